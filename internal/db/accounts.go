package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shopfloor/internal/session"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// Account is an operator record plus its stored credential hash.
type Account struct {
	User         session.User
	PasswordHash string
}

const accountByEmailSQL = `
select id, email, first_name, last_name, role, avatar_url, password_hash, created_at, updated_at
from accounts
where email = $1;
`

func (p *Pool) AccountByEmail(ctx context.Context, email string) (Account, error) {
	var account Account
	if p == nil {
		return account, errors.New("nil db pool")
	}

	var role string
	row := p.QueryRow(ctx, accountByEmailSQL, email)
	err := row.Scan(
		&account.User.ID,
		&account.User.Email,
		&account.User.FirstName,
		&account.User.LastName,
		&role,
		&account.User.AvatarURL,
		&account.PasswordHash,
		&account.User.CreatedAt,
		&account.User.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return account, ErrAccountNotFound
	}
	if err != nil {
		return account, fmt.Errorf("account by email: %w", err)
	}

	parsed, err := session.ParseRole(role)
	if err != nil {
		return account, fmt.Errorf("account %s: %w", account.User.ID, err)
	}
	account.User.Role = parsed
	return account, nil
}

const upsertAccountSQL = `
insert into accounts (id, email, first_name, last_name, role, avatar_url, password_hash, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, now(), now())
on conflict (email)
    do update set first_name    = excluded.first_name,
                  last_name     = excluded.last_name,
                  role          = excluded.role,
                  avatar_url    = excluded.avatar_url,
                  password_hash = excluded.password_hash,
                  updated_at    = now();
`

// UpsertAccount creates or refreshes an operator account, used by the seed
// tool.
func (p *Pool) UpsertAccount(ctx context.Context, user session.User, passwordHash string) error {
	if p == nil {
		return errors.New("nil db pool")
	}
	_, err := p.Exec(ctx, upsertAccountSQL,
		user.ID, user.Email, user.FirstName, user.LastName, string(user.Role), user.AvatarURL, passwordHash)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}
