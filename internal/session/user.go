package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role tags a user with their position on the shop floor. Routes may be
// restricted to a subset of roles.
type Role string

const (
	RoleAdmin                Role = "admin"
	RoleManufacturingManager Role = "manufacturing_manager"
	RoleOperator             Role = "operator"
)

// ParseRole validates a raw role string coming from storage or a token.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManufacturingManager:
		return RoleManufacturingManager, nil
	case RoleOperator:
		return RoleOperator, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// User is the operator account attached to the current session. The session
// owns its copy exclusively; it is replaced wholesale on login, logout, and
// profile updates, never shared by reference.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins the name parts for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProfilePatch carries the fields UpdateProfile may change. Nil fields are
// left untouched.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}
