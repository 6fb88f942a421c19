package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/you/staysvc/domain"
)

// ReservationServiceImpl implements domain.ReservationService.
// Reservations are not checked against existing bookings; overlapping stays are all confirmed.
type ReservationServiceImpl struct {
	bookings domain.BookingRepository
	listings domain.ListingRepository
	exporter domain.BookingExporter
	events   domain.EventPublisher
	now      func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	bookings domain.BookingRepository,
	listings domain.ListingRepository,
	exporter domain.BookingExporter,
	events domain.EventPublisher,
) domain.ReservationService {
	return &ReservationServiceImpl{
		bookings: bookings,
		listings: listings,
		exporter: exporter,
		events:   events,
		now:      time.Now,
	}
}

// Quote implements domain.ReservationService
func (s *ReservationServiceImpl) Quote(ctx context.Context, listingID string, checkIn, checkOut time.Time) (domain.Quote, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.ComputeQuote(listing.Price, checkIn, checkOut)
}

// Reserve implements domain.ReservationService
func (s *ReservationServiceImpl) Reserve(ctx context.Context, guestID string, req domain.ReservationRequest) (*domain.Booking, error) {
	if req.Guests < 1 {
		return nil, domain.NewValidationError("guests must be at least 1")
	}

	listing, err := s.listings.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	quote, err := domain.ComputeQuote(listing.Price, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		GuestID:    guestID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
		Nights:     quote.Nights,
		TotalPrice: quote.Total,
		Status:     domain.BookingStatusConfirmed,
		CreatedAt:  s.now(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	log.Printf("BOOKING_CONFIRMED: id=%s listing=%s guest=%s nights=%d total=%.2f",
		booking.ID, booking.ListingID, guestID, booking.Nights, booking.TotalPrice)
	publish(ctx, s.events, domain.NewEvent(domain.BookingConfirmedEvent, booking.ID, guestID, booking.CreatedAt).
		WithMetadata("listing_id", booking.ListingID).
		WithMetadata("nights", booking.Nights).
		WithMetadata("total_price", booking.TotalPrice))

	return booking, nil
}

// ListForGuest implements domain.ReservationService
func (s *ReservationServiceImpl) ListForGuest(ctx context.Context, guestID string) ([]domain.BookingView, error) {
	bookings, err := s.bookings.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	ids := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.ListingID] {
			seen[b.ListingID] = true
			ids = append(ids, b.ListingID)
		}
	}

	listings, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listings: %w", err)
	}

	views := make([]domain.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, domain.BookingView{Booking: b, Listing: listings[b.ListingID]})
	}
	return views, nil
}

// ExportForGuest implements domain.ReservationService
func (s *ReservationServiceImpl) ExportForGuest(ctx context.Context, guestID string, w io.Writer) error {
	if s.exporter == nil {
		return fmt.Errorf("%w: booking export is not configured", domain.ErrUnavailable)
	}
	views, err := s.ListForGuest(ctx, guestID)
	if err != nil {
		return err
	}
	if err := s.exporter.Export(w, views); err != nil {
		return fmt.Errorf("failed to export bookings: %w", err)
	}
	return nil
}
