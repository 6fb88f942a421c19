package domain

import (
	"math"
	"strings"
	"time"
)

// BookingStatusConfirmed is the only status a booking can carry
const BookingStatusConfirmed = "confirmed"

// Account represents a registered user of the marketplace
type Account struct {
	ID           string
	Name         string
	Email        string
	EmailKey     string
	PasswordHash string
	IsHost       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View returns the public projection of the account
func (a *Account) View() *AccountView {
	return &AccountView{ID: a.ID, Name: a.Name, Email: a.Email}
}

// AccountView is the public representation of an account
type AccountView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReviewAuthor is the resolved author of a review
type ReviewAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NormalizeEmail returns the case-insensitive comparison key for an email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthResult represents authentication outcome
type AuthResult struct {
	Token   string
	Account *Account
}

// Identity is the authenticated caller resolved from a session token
type Identity struct {
	AccountID string
	Email     string
}

// Location of a listing
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Capacity of a listing
type Capacity struct {
	Guests    int `json:"guests"`
	Bedrooms  int `json:"bedrooms"`
	Beds      int `json:"beds"`
	Bathrooms int `json:"bathrooms"`
}

// Image is a listing photo reference
type Image struct {
	URL string `json:"url"`
}

// Review is embedded in its listing
type Review struct {
	AccountID string    `json:"accountId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listing represents a rentable property published by a host
type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PropertyType string    `json:"propertyType"`
	Price        float64   `json:"price"`
	Location     Location  `json:"location"`
	Images       []Image   `json:"images"`
	Amenities    []string  `json:"amenities"`
	Capacity     Capacity  `json:"capacity"`
	HostID       string    `json:"hostId"`
	Rating       float64   `json:"rating"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the fields a published listing must carry
func (l *Listing) Validate() error {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return NewValidationError("title is required")
	case strings.TrimSpace(l.Description) == "":
		return NewValidationError("description is required")
	case l.Price <= 0:
		return NewValidationError("price must be greater than zero")
	case strings.TrimSpace(l.Location.City) == "":
		return NewValidationError("location.city is required")
	case strings.TrimSpace(l.Location.Country) == "":
		return NewValidationError("location.country is required")
	}
	c := l.Capacity
	if c.Guests < 0 || c.Bedrooms < 0 || c.Beds < 0 || c.Bathrooms < 0 {
		return NewValidationError("capacity values cannot be negative")
	}
	return nil
}

// RecomputeRating sets Rating to the mean review rating, rounded to two decimals
func (l *Listing) RecomputeRating() {
	if len(l.Reviews) == 0 {
		l.Rating = 0
		return
	}
	sum := 0
	for _, r := range l.Reviews {
		sum += r.Rating
	}
	l.Rating = math.Round(float64(sum)/float64(len(l.Reviews))*100) / 100
}

// ListingInput carries the host-supplied fields of a new listing
type ListingInput struct {
	Title        string
	Description  string
	PropertyType string
	Price        float64
	Location     Location
	Images       []Image
	Amenities    []string
	Capacity     Capacity
}

// ListingPatch is a partial update; nil fields are left untouched.
// Host, rating and reviews are not patchable.
type ListingPatch struct {
	Title        *string
	Description  *string
	PropertyType *string
	Price        *float64
	City         *string
	Country      *string
	Images       *[]Image
	Amenities    *[]string
	Capacity     *Capacity
}

// Apply copies the set fields of the patch onto the listing
func (p ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.City != nil {
		l.Location.City = *p.City
	}
	if p.Country != nil {
		l.Location.Country = *p.Country
	}
	if p.Images != nil {
		l.Images = *p.Images
	}
	if p.Amenities != nil {
		l.Amenities = *p.Amenities
	}
	if p.Capacity != nil {
		l.Capacity = *p.Capacity
	}
}

// ListingFilter holds catalog search criteria. Empty strings and nil bounds are unconstrained.
type ListingFilter struct {
	Text     string
	City     string
	MinPrice *float64
	MaxPrice *float64
}

// ReviewDetail is a review with its author resolved
type ReviewDetail struct {
	Review
	Author *ReviewAuthor `json:"author"`
}

// ListingDetail is a listing with host and review authors resolved
type ListingDetail struct {
	Listing
	Host    *AccountView   `json:"host"`
	Reviews []ReviewDetail `json:"reviews"`
}

// Booking is an immutable confirmed reservation
type Booking struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	GuestID    string    `json:"guestId"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	Guests     int       `json:"guests"`
	Nights     int       `json:"nights"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingView is a booking with its listing resolved; Listing is nil when it no longer exists
type BookingView struct {
	Booking
	Listing *Listing `json:"listing"`
}

// ReservationRequest represents a guest's booking attempt
type ReservationRequest struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
}
