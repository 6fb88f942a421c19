package mocks

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/you/staysvc/domain"
)

var errNotConfigured = errors.New("mock: not configured")

// MockIdentityService implements domain.IdentityService interface for testing
type MockIdentityService struct {
	RegisterFunc     func(ctx context.Context, name, email, password string) (*domain.AuthResult, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	ResolveFunc      func(ctx context.Context, accountID string) (*domain.Account, error)
}

func (m *MockIdentityService) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	return nil, errNotConfigured
}

func (m *MockIdentityService) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, errNotConfigured
}

func (m *MockIdentityService) Resolve(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, accountID)
	}
	return nil, domain.ErrAccountNotFound
}

// MockCatalogService implements domain.CatalogService interface for testing
type MockCatalogService struct {
	SearchFunc      func(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error)
	GetFunc         func(ctx context.Context, id string) (*domain.ListingDetail, error)
	CreateFunc      func(ctx context.Context, hostID string, input domain.ListingInput) (*domain.Listing, error)
	UpdateFunc      func(ctx context.Context, requesterID, id string, patch domain.ListingPatch) (*domain.Listing, error)
	DeleteFunc      func(ctx context.Context, requesterID, id string) error
	AddReviewFunc   func(ctx context.Context, authorID, listingID string, rating int, comment string) (*domain.ListingDetail, error)
	AttachImageFunc func(ctx context.Context, requesterID, listingID string, upload domain.ImageUpload) (*domain.Listing, error)
}

func (m *MockCatalogService) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter)
	}
	return []domain.Listing{}, nil
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (*domain.ListingDetail, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrListingNotFound
}

func (m *MockCatalogService) Create(ctx context.Context, hostID string, input domain.ListingInput) (*domain.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, hostID, input)
	}
	return nil, errNotConfigured
}

func (m *MockCatalogService) Update(ctx context.Context, requesterID, id string, patch domain.ListingPatch) (*domain.Listing, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, requesterID, id, patch)
	}
	return nil, errNotConfigured
}

func (m *MockCatalogService) Delete(ctx context.Context, requesterID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, requesterID, id)
	}
	return errNotConfigured
}

func (m *MockCatalogService) AddReview(ctx context.Context, authorID, listingID string, rating int, comment string) (*domain.ListingDetail, error) {
	if m.AddReviewFunc != nil {
		return m.AddReviewFunc(ctx, authorID, listingID, rating, comment)
	}
	return nil, errNotConfigured
}

func (m *MockCatalogService) AttachImage(ctx context.Context, requesterID, listingID string, upload domain.ImageUpload) (*domain.Listing, error) {
	if m.AttachImageFunc != nil {
		return m.AttachImageFunc(ctx, requesterID, listingID, upload)
	}
	return nil, errNotConfigured
}

// MockReservationService implements domain.ReservationService interface for testing
type MockReservationService struct {
	QuoteFunc          func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (domain.Quote, error)
	ReserveFunc        func(ctx context.Context, guestID string, req domain.ReservationRequest) (*domain.Booking, error)
	ListForGuestFunc   func(ctx context.Context, guestID string) ([]domain.BookingView, error)
	ExportForGuestFunc func(ctx context.Context, guestID string, w io.Writer) error
}

func (m *MockReservationService) Quote(ctx context.Context, listingID string, checkIn, checkOut time.Time) (domain.Quote, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, listingID, checkIn, checkOut)
	}
	return domain.Quote{}, errNotConfigured
}

func (m *MockReservationService) Reserve(ctx context.Context, guestID string, req domain.ReservationRequest) (*domain.Booking, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, guestID, req)
	}
	return nil, errNotConfigured
}

func (m *MockReservationService) ListForGuest(ctx context.Context, guestID string) ([]domain.BookingView, error) {
	if m.ListForGuestFunc != nil {
		return m.ListForGuestFunc(ctx, guestID)
	}
	return []domain.BookingView{}, nil
}

func (m *MockReservationService) ExportForGuest(ctx context.Context, guestID string, w io.Writer) error {
	if m.ExportForGuestFunc != nil {
		return m.ExportForGuestFunc(ctx, guestID, w)
	}
	return errNotConfigured
}

// Compile-time interface compliance verification
var (
	_ domain.IdentityService    = (*MockIdentityService)(nil)
	_ domain.CatalogService     = (*MockCatalogService)(nil)
	_ domain.ReservationService = (*MockReservationService)(nil)
)
