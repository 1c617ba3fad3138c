package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`create table if not exists accounts (
        id            uuid primary key,
        email         text not null unique,
        first_name    text not null,
        last_name     text not null,
        role          text not null,
        avatar_url    text not null default '',
        password_hash text not null,
        created_at    timestamptz not null default now(),
        updated_at    timestamptz not null default now()
    )`,
	`create table if not exists products (
        id               uuid primary key,
        sku              text not null unique,
        name             text not null,
        category         text not null,
        unit_price_cents bigint not null,
        unit_of_measure  text not null,
        created_at       timestamptz not null default now()
    )`,
	`create table if not exists work_centers (
        id                  uuid primary key,
        code                text not null unique,
        name                text not null,
        cost_per_hour_cents bigint not null,
        capacity_minutes    integer not null,
        status              text not null
    )`,
	`create table if not exists manufacturing_orders (
        id             uuid primary key,
        reference      text not null unique,
        product_id     uuid not null references products (id),
        work_center_id uuid not null references work_centers (id),
        quantity       integer not null,
        status         text not null,
        deadline       timestamptz not null,
        created_at     timestamptz not null default now()
    )`,
	`create table if not exists boms (
        id              uuid primary key,
        reference       text not null unique,
        product_id      uuid not null references products (id),
        output_quantity integer not null
    )`,
	`create table if not exists bom_lines (
        bom_id     uuid not null references boms (id) on delete cascade,
        product_id uuid not null references products (id),
        quantity   integer not null,
        primary key (bom_id, product_id)
    )`,
	`create table if not exists stock_moves (
        id           uuid primary key,
        reference    text not null unique,
        product_id   uuid not null references products (id),
        quantity     integer not null,
        source       text not null,
        destination  text not null,
        status       text not null,
        scheduled_at timestamptz not null
    )`,
}

// CreateSchema applies the dashboard schema. Statements are idempotent so the
// seed tool can run repeatedly.
func (p *Pool) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
