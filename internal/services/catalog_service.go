package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/you/staysvc/domain"
)

// CatalogServiceImpl implements domain.CatalogService
type CatalogServiceImpl struct {
	listings domain.ListingRepository
	accounts domain.AccountRepository
	policy   domain.OwnershipPolicy
	images   domain.ImageStore
	events   domain.EventPublisher
	now      func() time.Time
}

// NewCatalogService creates a new catalog service. images may be nil when no object store is configured.
func NewCatalogService(
	listings domain.ListingRepository,
	accounts domain.AccountRepository,
	policy domain.OwnershipPolicy,
	images domain.ImageStore,
	events domain.EventPublisher,
) domain.CatalogService {
	return &CatalogServiceImpl{
		listings: listings,
		accounts: accounts,
		policy:   policy,
		images:   images,
		events:   events,
		now:      time.Now,
	}
}

// Search implements domain.CatalogService
func (s *CatalogServiceImpl) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return []domain.Listing{}, nil
	}
	return s.listings.Search(ctx, filter)
}

// Get implements domain.CatalogService
func (s *CatalogServiceImpl) Get(ctx context.Context, id string) (*domain.ListingDetail, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, listing)
}

// detail resolves the host and review authors of a listing
func (s *CatalogServiceImpl) detail(ctx context.Context, listing *domain.Listing) (*domain.ListingDetail, error) {
	resolved := make(map[string]*domain.Account)
	lookup := func(id string) (*domain.Account, error) {
		if a, ok := resolved[id]; ok {
			return a, nil
		}
		a, err := s.accounts.FindByID(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		resolved[id] = a
		return a, nil
	}

	d := &domain.ListingDetail{Listing: *listing, Reviews: make([]domain.ReviewDetail, 0, len(listing.Reviews))}

	host, err := lookup(listing.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	if host != nil {
		d.Host = host.View()
	}

	for _, r := range listing.Reviews {
		rd := domain.ReviewDetail{Review: r}
		author, err := lookup(r.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve review author: %w", err)
		}
		if author != nil {
			rd.Author = &domain.ReviewAuthor{ID: author.ID, Name: author.Name}
		}
		d.Reviews = append(d.Reviews, rd)
	}
	return d, nil
}

// Create implements domain.CatalogService
func (s *CatalogServiceImpl) Create(ctx context.Context, hostID string, input domain.ListingInput) (*domain.Listing, error) {
	now := s.now()
	listing := &domain.Listing{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		PropertyType: input.PropertyType,
		Price:        input.Price,
		Location:     input.Location,
		Images:       input.Images,
		Amenities:    input.Amenities,
		Capacity:     input.Capacity,
		HostID:       hostID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := s.accounts.MarkHost(ctx, hostID); err != nil {
		log.Printf("MARK_HOST_FAILED: account=%s error=%v", hostID, err)
	}

	log.Printf("LISTING_CREATED: id=%s host=%s", listing.ID, hostID)
	publish(ctx, s.events, domain.NewEvent(domain.ListingCreatedEvent, listing.ID, hostID, now).
		WithMetadata("price", listing.Price).
		WithMetadata("city", listing.Location.City))

	return listing, nil
}

// Update implements domain.CatalogService
func (s *CatalogServiceImpl) Update(ctx context.Context, requesterID, id string, patch domain.ListingPatch) (*domain.Listing, error) {
	listing, err := s.owned(ctx, requesterID, id, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	patch.Apply(listing)
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	listing.UpdatedAt = s.now()

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	publish(ctx, s.events, domain.NewEvent(domain.ListingUpdatedEvent, listing.ID, requesterID, listing.UpdatedAt))
	return listing, nil
}

// Delete implements domain.CatalogService
func (s *CatalogServiceImpl) Delete(ctx context.Context, requesterID, id string) error {
	if _, err := s.owned(ctx, requesterID, id, domain.ActionDelete); err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	log.Printf("LISTING_DELETED: id=%s by=%s", id, requesterID)
	publish(ctx, s.events, domain.NewEvent(domain.ListingDeletedEvent, id, requesterID, s.now()))
	return nil
}

// AddReview implements domain.CatalogService
func (s *CatalogServiceImpl) AddReview(ctx context.Context, authorID, listingID string, rating int, comment string) (*domain.ListingDetail, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.HostID == authorID {
		return nil, fmt.Errorf("%w: hosts cannot review their own listing", domain.ErrForbidden)
	}

	now := s.now()
	review := domain.Review{
		AccountID: authorID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
	}
	reviewed, err := s.listings.AppendReview(ctx, listing.ID, review, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	publish(ctx, s.events, domain.NewEvent(domain.ListingReviewedEvent, reviewed.ID, authorID, now).
		WithMetadata("rating", rating))
	return s.detail(ctx, reviewed)
}

// AttachImage implements domain.CatalogService
func (s *CatalogServiceImpl) AttachImage(ctx context.Context, requesterID, listingID string, upload domain.ImageUpload) (*domain.Listing, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", domain.ErrUnavailable)
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, domain.NewValidationError("unsupported content type %q", upload.ContentType)
	}

	listing, err := s.owned(ctx, requesterID, listingID, domain.ActionAttachImage)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("listings/%s/%s%s", listing.ID, uuid.NewString(), strings.ToLower(path.Ext(upload.Filename)))
	url, err := s.images.Put(ctx, key, upload.ContentType, upload.Size, upload.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	updated, err := s.listings.AppendImage(ctx, listing.ID, domain.Image{URL: url}, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	publish(ctx, s.events, domain.NewEvent(domain.ListingUpdatedEvent, updated.ID, requesterID, updated.UpdatedAt).
		WithMetadata("image", url))
	return updated, nil
}

// owned loads a listing and checks that requester may perform action on it
func (s *CatalogServiceImpl) owned(ctx context.Context, requesterID, id, action string) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.Allowed(requesterID, listing.HostID, domain.ResourceListing, action)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate ownership policy: %w", err)
	}
	if !allowed {
		log.Printf("OWNERSHIP_DENIED: account=%s listing=%s action=%s", requesterID, id, action)
		return nil, domain.ErrForbidden
	}
	return listing, nil
}
