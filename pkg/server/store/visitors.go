package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
)

// ErrVisitorExists is returned when a visitor with the same username
// already exists. It is the uniqueness violation of the users table.
var ErrVisitorExists = errors.New("visitor already exists")

// VisitorsStore abstracts visitor storage operations
type VisitorsStore interface {
	// FindVisitorByName looks a visitor up by exact username.
	// Returns (nil, nil) when there is no such visitor.
	FindVisitorByName(ctx context.Context, name string) (*model.Visitor, error)

	// CreateVisitor inserts and commits a new visitor.
	// Returns ErrVisitorExists if the username is taken.
	CreateVisitor(ctx context.Context, name string) (*model.Visitor, error)

	// CreateVisitorWithRole inserts a visitor referencing an existing role.
	// Returns ErrRoleNotFound if the role does not exist.
	CreateVisitorWithRole(ctx context.Context, name string, roleID int64) (*model.Visitor, error)

	// EnsureVisitor atomically inserts the visitor if absent. created is
	// true only for the caller whose insert took effect; every other caller
	// gets the existing row.
	EnsureVisitor(ctx context.Context, name string) (visitor *model.Visitor, created bool, err error)

	// ListRolesFor returns the roles the visitor references (zero or one)
	ListRolesFor(ctx context.Context, visitor *model.Visitor) ([]model.Role, error)

	// ListVisitors returns all visitors ordered by id
	ListVisitors(ctx context.Context) ([]model.Visitor, error)

	// CountVisitors counts stored visitors
	CountVisitors(ctx context.Context) (int64, error)
}
