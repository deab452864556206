package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/server/store"
)

// Ensure VisitorsStore implements store.VisitorsStore
var _ store.VisitorsStore = (*VisitorsStore)(nil)

// VisitorsStore implements store.VisitorsStore using GORM
type VisitorsStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewVisitorsStore creates a new VisitorsStore. Each call is bounded by
// timeout; zero disables the bound.
func NewVisitorsStore(db *gorm.DB, timeout time.Duration) *VisitorsStore {
	return &VisitorsStore{db: db, timeout: timeout}
}

// FindVisitorByName looks a visitor up by exact username
func (s *VisitorsStore) FindVisitorByName(ctx context.Context, name string) (*model.Visitor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var visitor model.Visitor
	err := s.db.WithContext(ctx).Where("username = ?", name).Take(&visitor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find visitor %q: %w", name, err)
	}
	return &visitor, nil
}

// CreateVisitor inserts and commits a new visitor
func (s *VisitorsStore) CreateVisitor(ctx context.Context, name string) (*model.Visitor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	visitor := &model.Visitor{Username: name}
	if err := s.db.WithContext(ctx).Create(visitor).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrVisitorExists
		}
		return nil, fmt.Errorf("create visitor %q: %w", name, err)
	}
	return visitor, nil
}

// CreateVisitorWithRole inserts a visitor referencing an existing role. The
// role check and the insert share one transaction.
func (s *VisitorsStore) CreateVisitorWithRole(ctx context.Context, name string, roleID int64) (*model.Visitor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	visitor := &model.Visitor{Username: name, RoleID: &roleID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrRoleNotFound
		}
		return tx.Create(visitor).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRoleNotFound):
			return nil, err
		case isUniqueViolation(err):
			return nil, store.ErrVisitorExists
		}
		return nil, fmt.Errorf("create visitor %q: %w", name, err)
	}
	return visitor, nil
}

// EnsureVisitor inserts the visitor unless the username exists, using
// INSERT ... ON CONFLICT (username) DO NOTHING. The caller whose insert
// took effect sees created=true; concurrent callers read the winner's row.
func (s *VisitorsStore) EnsureVisitor(ctx context.Context, name string) (*model.Visitor, bool, error) {
	visitor, created, err := s.insertIfAbsent(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if created {
		return visitor, true, nil
	}

	existing, err := s.FindVisitorByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("visitor %q conflicted on insert but is not readable", name)
	}
	return existing, false, nil
}

func (s *VisitorsStore) insertIfAbsent(ctx context.Context, name string) (*model.Visitor, bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	visitor := &model.Visitor{Username: name}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(visitor)
	if result.Error != nil {
		// Some backends still report the conflict as an error
		if isUniqueViolation(result.Error) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ensure visitor %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 || visitor.ID == 0 {
		return nil, false, nil
	}
	return visitor, true, nil
}

// ListRolesFor returns the role referenced by the visitor, if any
func (s *VisitorsStore) ListRolesFor(ctx context.Context, visitor *model.Visitor) ([]model.Role, error) {
	if visitor == nil || visitor.RoleID == nil {
		return []model.Role{}, nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var roles []model.Role
	err := s.db.WithContext(ctx).Where("id = ?", *visitor.RoleID).Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("roles for visitor %q: %w", visitor.Username, err)
	}
	return roles, nil
}

// ListVisitors returns all visitors ordered by id
func (s *VisitorsStore) ListVisitors(ctx context.Context) ([]model.Visitor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var visitors []model.Visitor
	if err := s.db.WithContext(ctx).Order("id").Find(&visitors).Error; err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, nil
}

// CountVisitors counts stored visitors
func (s *VisitorsStore) CountVisitors(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Visitor{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count visitors: %w", err)
	}
	return count, nil
}
