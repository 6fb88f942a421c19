package mocks

import (
	"context"

	"github.com/you/staysvc/domain"
)

// MockBookingRepository implements domain.BookingRepository interface for testing
type MockBookingRepository struct {
	CreateFunc      func(ctx context.Context, booking *domain.Booking) error
	ListByGuestFunc func(ctx context.Context, guestID string) ([]domain.Booking, error)
}

// NewMockBookingRepository creates a new MockBookingRepository with default behaviors
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.Booking, error) {
	if m.ListByGuestFunc != nil {
		return m.ListByGuestFunc(ctx, guestID)
	}
	return []domain.Booking{}, nil
}

// Compile-time interface compliance verification
var _ domain.BookingRepository = (*MockBookingRepository)(nil)
