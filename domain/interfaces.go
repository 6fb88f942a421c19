package domain

import (
	"context"
	"io"
	"time"
)

// AccountRepository defines account data access operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmailKey(ctx context.Context, emailKey string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	MarkHost(ctx context.Context, id string) error
}

// ListingRepository defines listing data access operations.
// Update writes the host-editable fields only; reviews and rating change
// through AppendReview, which is atomic per listing.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*Listing, error)
	Search(ctx context.Context, filter ListingFilter) ([]Listing, error)
	Update(ctx context.Context, listing *Listing) error
	AppendReview(ctx context.Context, id string, review Review, at time.Time) (*Listing, error)
	AppendImage(ctx context.Context, id string, image Image, at time.Time) (*Listing, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepository defines booking data access operations
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]Booking, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService issues and verifies session tokens.
// Verification is a pure function of the token, the signing secret and now.
type TokenService interface {
	Issue(identity Identity, now time.Time) (string, error)
	Verify(token string, now time.Time) (*Identity, error)
}

// Resources and actions guarded by the ownership policy
const (
	ResourceListing = "listing"

	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionAttachImage = "attach_image"
)

// OwnershipPolicy decides whether subject may perform action on a resource owned by owner
type OwnershipPolicy interface {
	Allowed(subject, owner, resource, action string) (bool, error)
}

// ImageStore persists uploaded listing images and returns their public URL
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
}

// BookingExporter renders a guest's bookings as a document
type BookingExporter interface {
	Export(w io.Writer, bookings []BookingView) error
	ContentType() string
	FileExtension() string
}

// IdentityService defines registration and credential verification
type IdentityService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Resolve(ctx context.Context, accountID string) (*Account, error)
}

// CatalogService defines listing business logic
type CatalogService interface {
	Search(ctx context.Context, filter ListingFilter) ([]Listing, error)
	Get(ctx context.Context, id string) (*ListingDetail, error)
	Create(ctx context.Context, hostID string, input ListingInput) (*Listing, error)
	Update(ctx context.Context, requesterID, id string, patch ListingPatch) (*Listing, error)
	Delete(ctx context.Context, requesterID, id string) error
	AddReview(ctx context.Context, authorID, listingID string, rating int, comment string) (*ListingDetail, error)
	AttachImage(ctx context.Context, requesterID, listingID string, upload ImageUpload) (*Listing, error)
}

// ReservationService defines booking business logic
type ReservationService interface {
	Quote(ctx context.Context, listingID string, checkIn, checkOut time.Time) (Quote, error)
	Reserve(ctx context.Context, guestID string, req ReservationRequest) (*Booking, error)
	ListForGuest(ctx context.Context, guestID string) ([]BookingView, error)
	ExportForGuest(ctx context.Context, guestID string, w io.Writer) error
}

// ImageUpload is an image file received from a host
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
