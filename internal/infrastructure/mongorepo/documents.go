package mongorepo

import (
	"time"

	"github.com/you/staysvc/domain"
)

// Collection names
const (
	AccountsCollection = "accounts"
	ListingsCollection = "listings"
	BookingsCollection = "bookings"
)

type accountDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"email_key"`
	PasswordHash string    `bson:"password"`
	IsHost       bool      `bson:"is_host"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type locationDoc struct {
	City    string `bson:"city"`
	Country string `bson:"country"`
}

type capacityDoc struct {
	Guests    int `bson:"guests"`
	Bedrooms  int `bson:"bedrooms"`
	Beds      int `bson:"beds"`
	Bathrooms int `bson:"bathrooms"`
}

type reviewDoc struct {
	AccountID string    `bson:"account_id"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

type listingDoc struct {
	ID           string      `bson:"_id"`
	Title        string      `bson:"title"`
	Description  string      `bson:"description"`
	PropertyType string      `bson:"property_type"`
	Price        float64     `bson:"price"`
	Location     locationDoc `bson:"location"`
	Images       []string    `bson:"images"`
	Amenities    []string    `bson:"amenities"`
	Capacity     capacityDoc `bson:"capacity"`
	HostID       string      `bson:"host_id"`
	Rating       float64     `bson:"rating"`
	Reviews      []reviewDoc `bson:"reviews"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

type bookingDoc struct {
	ID         string    `bson:"_id"`
	ListingID  string    `bson:"listing_id"`
	GuestID    string    `bson:"guest_id"`
	CheckIn    time.Time `bson:"check_in"`
	CheckOut   time.Time `bson:"check_out"`
	Guests     int       `bson:"guests"`
	Nights     int       `bson:"nights"`
	TotalPrice float64   `bson:"total_price"`
	Status     string    `bson:"status"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toAccountDoc(a *domain.Account) *accountDoc {
	return &accountDoc{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		EmailKey:     a.EmailKey,
		PasswordHash: a.PasswordHash,
		IsHost:       a.IsHost,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		EmailKey:     d.EmailKey,
		PasswordHash: d.PasswordHash,
		IsHost:       d.IsHost,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toListingDoc(l *domain.Listing) *listingDoc {
	images := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, img.URL)
	}
	reviews := make([]reviewDoc, 0, len(l.Reviews))
	for _, r := range l.Reviews {
		reviews = append(reviews, reviewDoc{AccountID: r.AccountID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return &listingDoc{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		PropertyType: l.PropertyType,
		Price:        l.Price,
		Location:     locationDoc{City: l.Location.City, Country: l.Location.Country},
		Images:       images,
		Amenities:    amenities,
		Capacity: capacityDoc{
			Guests:    l.Capacity.Guests,
			Bedrooms:  l.Capacity.Bedrooms,
			Beds:      l.Capacity.Beds,
			Bathrooms: l.Capacity.Bathrooms,
		},
		HostID:    l.HostID,
		Rating:    l.Rating,
		Reviews:   reviews,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (d *listingDoc) toDomain() *domain.Listing {
	images := make([]domain.Image, 0, len(d.Images))
	for _, url := range d.Images {
		images = append(images, domain.Image{URL: url})
	}
	reviews := make([]domain.Review, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, domain.Review{AccountID: r.AccountID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	amenities := d.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return &domain.Listing{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: d.PropertyType,
		Price:        d.Price,
		Location:     domain.Location{City: d.Location.City, Country: d.Location.Country},
		Images:       images,
		Amenities:    amenities,
		Capacity: domain.Capacity{
			Guests:    d.Capacity.Guests,
			Bedrooms:  d.Capacity.Bedrooms,
			Beds:      d.Capacity.Beds,
			Bathrooms: d.Capacity.Bathrooms,
		},
		HostID:    d.HostID,
		Rating:    d.Rating,
		Reviews:   reviews,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toBookingDoc(b *domain.Booking) *bookingDoc {
	return &bookingDoc{
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

func (d *bookingDoc) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:         d.ID,
		ListingID:  d.ListingID,
		GuestID:    d.GuestID,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,
		Guests:     d.Guests,
		Nights:     d.Nights,
		TotalPrice: d.TotalPrice,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
	}
}
