package mocks

import (
	"context"

	"github.com/you/staysvc/domain"
)

// MockAccountRepository implements domain.AccountRepository interface for testing
type MockAccountRepository struct {
	CreateFunc         func(ctx context.Context, account *domain.Account) error
	FindByEmailKeyFunc func(ctx context.Context, emailKey string) (*domain.Account, error)
	FindByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	MarkHostFunc       func(ctx context.Context, id string) error
}

// NewMockAccountRepository creates a new MockAccountRepository with default behaviors
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

// Create stores a new account
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

// FindByEmailKey finds an account by its normalized email
func (m *MockAccountRepository) FindByEmailKey(ctx context.Context, emailKey string) (*domain.Account, error) {
	if m.FindByEmailKeyFunc != nil {
		return m.FindByEmailKeyFunc(ctx, emailKey)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// FindByID finds an account by ID
func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrAccountNotFound
}

// MarkHost flags the account as a host
func (m *MockAccountRepository) MarkHost(ctx context.Context, id string) error {
	if m.MarkHostFunc != nil {
		return m.MarkHostFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountRepository = (*MockAccountRepository)(nil)
