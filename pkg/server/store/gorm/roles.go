package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
)

// Ensure RolesStore implements store.RolesStore
var _ store.RolesStore = (*RolesStore)(nil)

// RolesStore implements store.RolesStore using GORM
type RolesStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRolesStore creates a new RolesStore
func NewRolesStore(db *gorm.DB, timeout time.Duration) *RolesStore {
	return &RolesStore{db: db, timeout: timeout}
}

// CreateRole inserts a role
func (s *RolesStore) CreateRole(ctx context.Context, name string) (*model.Role, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	role := &model.Role{Name: name}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrRoleExists
		}
		return nil, fmt.Errorf("create role %q: %w", name, err)
	}
	return role, nil
}

// FindRoleByName looks a role up by exact name
func (s *RolesStore) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var role model.Role
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find role %q: %w", name, err)
	}
	return &role, nil
}

// FetchRole retrieves a role by id
func (s *RolesStore) FetchRole(ctx context.Context, roleID int64) (*model.Role, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var role model.Role
	err := s.db.WithContext(ctx).Where("id = ?", roleID).Take(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrRoleNotFound
		}
		return nil, fmt.Errorf("fetch role %d: %w", roleID, err)
	}
	return &role, nil
}

// RoleExists checks if a role exists
func (s *RolesStore) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("role exists %d: %w", roleID, err)
	}
	return count > 0, nil
}

// ListRoles returns all roles ordered by id
func (s *RolesStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var roles []model.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// VisitorsForRole returns the visitors referencing a role
func (s *RolesStore) VisitorsForRole(ctx context.Context, roleID int64) ([]model.Visitor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var visitors []model.Visitor
	err := s.db.WithContext(ctx).Where("role_id = ?", roleID).Order("id").Find(&visitors).Error
	if err != nil {
		return nil, fmt.Errorf("visitors for role %d: %w", roleID, err)
	}
	return visitors, nil
}
