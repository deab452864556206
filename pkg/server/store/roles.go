package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
)

var (
	// ErrRoleExists is returned when a role name is already taken
	ErrRoleExists = errors.New("role already exists")

	// ErrRoleNotFound is returned when a referenced role does not exist
	ErrRoleNotFound = errors.New("role not found")
)

// RolesStore abstracts role storage operations
type RolesStore interface {
	// CreateRole inserts a role. Returns ErrRoleExists on a duplicate name.
	CreateRole(ctx context.Context, name string) (*model.Role, error)

	// FindRoleByName returns (nil, nil) when there is no such role
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)

	// FetchRole returns ErrRoleNotFound when there is no such role
	FetchRole(ctx context.Context, roleID int64) (*model.Role, error)

	// RoleExists checks if a role exists
	RoleExists(ctx context.Context, roleID int64) (bool, error)

	// ListRoles returns all roles ordered by id
	ListRoles(ctx context.Context) ([]model.Role, error)

	// VisitorsForRole returns the visitors referencing a role, ordered by id
	VisitorsForRole(ctx context.Context, roleID int64) ([]model.Visitor, error)
}
