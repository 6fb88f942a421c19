package repositories

import (
	"context"
	"time"

	"github.com/you/staysvc/domain"
	"gorm.io/gorm"
)

// BookingRepositoryImpl implements domain.BookingRepository using GORM
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// DBBooking represents the database model for Booking
type DBBooking struct {
	ID         string    `gorm:"primaryKey;size:36"`
	ListingID  string    `gorm:"index;size:36"`
	GuestID    string    `gorm:"index;size:36"`
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Nights     int
	TotalPrice float64
	Status     string    `gorm:"size:32"`
	CreatedAt  time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBBooking) TableName() string {
	return "bookings"
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domain.BookingRepository {
	return &BookingRepositoryImpl{db: db}
}

// Create implements domain.BookingRepository
func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *domain.Booking) error {
	row := r.domainToDB(booking)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	booking.CreatedAt = row.CreatedAt
	return nil
}

// ListByGuest implements domain.BookingRepository, newest first
func (r *BookingRepositoryImpl) ListByGuest(ctx context.Context, guestID string) ([]domain.Booking, error) {
	var rows []DBBooking
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	bookings := make([]domain.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, *r.dbToDomain(&rows[i]))
	}
	return bookings, nil
}

// domainToDB converts domain booking to database booking
func (r *BookingRepositoryImpl) domainToDB(b *domain.Booking) *DBBooking {
	return &DBBooking{
		ID:         b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Guests:     b.Guests,
		Nights:     b.Nights,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
}

// dbToDomain converts database booking to domain booking
func (r *BookingRepositoryImpl) dbToDomain(row *DBBooking) *domain.Booking {
	return &domain.Booking{
		ID:         row.ID,
		ListingID:  row.ListingID,
		GuestID:    row.GuestID,
		CheckIn:    row.CheckIn,
		CheckOut:   row.CheckOut,
		Guests:     row.Guests,
		Nights:     row.Nights,
		TotalPrice: row.TotalPrice,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
	}
}
