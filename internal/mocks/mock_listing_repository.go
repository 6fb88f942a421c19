package mocks

import (
	"context"
	"time"

	"github.com/you/staysvc/domain"
)

// MockListingRepository implements domain.ListingRepository interface for testing
type MockListingRepository struct {
	CreateFunc       func(ctx context.Context, listing *domain.Listing) error
	FindByIDFunc     func(ctx context.Context, id string) (*domain.Listing, error)
	FindByIDsFunc    func(ctx context.Context, ids []string) (map[string]*domain.Listing, error)
	SearchFunc       func(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	UpdateFunc       func(ctx context.Context, listing *domain.Listing) error
	AppendReviewFunc func(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error)
	AppendImageFunc  func(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

// NewMockListingRepository creates a new MockListingRepository with default behaviors
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{}
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing)
	}
	return nil
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrListingNotFound
}

func (m *MockListingRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	return map[string]*domain.Listing{}, nil
}

func (m *MockListingRepository) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter)
	}
	return []domain.Listing{}, nil
}

func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, listing)
	}
	return nil
}

func (m *MockListingRepository) AppendReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error) {
	if m.AppendReviewFunc != nil {
		return m.AppendReviewFunc(ctx, id, review, at)
	}
	return &domain.Listing{ID: id, Reviews: []domain.Review{review}, UpdatedAt: at}, nil
}

func (m *MockListingRepository) AppendImage(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error) {
	if m.AppendImageFunc != nil {
		return m.AppendImageFunc(ctx, id, image, at)
	}
	return &domain.Listing{ID: id, Images: []domain.Image{image}, UpdatedAt: at}, nil
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.ListingRepository = (*MockListingRepository)(nil)
