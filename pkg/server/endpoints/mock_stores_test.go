package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/model"
	"github.com/doodlesbykumbi/flasky-in-go/pkg/visitor"
)

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRegisterer implements Registerer for testing using testify/mock
type MockRegisterer struct {
	mock.Mock
}

func NewMockRegisterer() *MockRegisterer {
	return &MockRegisterer{}
}

func (m *MockRegisterer) Register(ctx context.Context, name string) (visitor.Outcome, *model.Visitor, error) {
	args := m.Called(ctx, name)
	if args.Get(1) == nil {
		return args.Get(0).(visitor.Outcome), nil, args.Error(2)
	}
	return args.Get(0).(visitor.Outcome), args.Get(1).(*model.Visitor), args.Error(2)
}
