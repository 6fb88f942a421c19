package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/mocks"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// createIdentityServiceForTest wires an IdentityService with mock dependencies and a fixed clock
func createIdentityServiceForTest(t *testing.T,
	accounts domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	events domain.EventPublisher) *IdentityServiceImpl {
	t.Helper()

	if accounts == nil {
		accounts = mocks.NewMockAccountRepository()
	}
	if passwordSvc == nil {
		passwordSvc = mocks.NewMockPasswordService()
	}
	if tokenSvc == nil {
		tokenSvc = mocks.NewMockTokenService()
	}
	if events == nil {
		events = mocks.NewMockEventPublisher()
	}

	svc := NewIdentityService(accounts, passwordSvc, tokenSvc, events).(*IdentityServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// createCatalogServiceForTest wires a CatalogService over the given repositories with a fixed clock
func createCatalogServiceForTest(t *testing.T,
	listings domain.ListingRepository,
	accounts domain.AccountRepository,
	images domain.ImageStore,
	events domain.EventPublisher) *CatalogServiceImpl {
	t.Helper()

	if accounts == nil {
		accounts = mocks.NewMockAccountRepository()
	}
	if events == nil {
		events = mocks.NewMockEventPublisher()
	}

	svc := NewCatalogService(listings, accounts, mocks.NewMockOwnershipPolicy(), images, events).(*CatalogServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// createValidAccount creates a registered account for testing
func createValidAccount(t *testing.T) *domain.Account {
	t.Helper()

	return &domain.Account{
		ID:           "account-1",
		Name:         "Sarah",
		Email:        "sarah@example.com",
		EmailKey:     "sarah@example.com",
		PasswordHash: "hashed_secret123",
		CreatedAt:    fixedNow.Add(-24 * time.Hour),
		UpdatedAt:    fixedNow.Add(-24 * time.Hour),
	}
}

// createValidListing creates a listing owned by hostID
func createValidListing(t *testing.T, id, hostID string, price float64) *domain.Listing {
	t.Helper()

	return &domain.Listing{
		ID:          id,
		Title:       "Listing " + id,
		Description: "A place to stay",
		Price:       price,
		Location:    domain.Location{City: "Paris", Country: "France"},
		Capacity:    domain.Capacity{Guests: 4, Bedrooms: 2, Beds: 2, Bathrooms: 1},
		HostID:      hostID,
		CreatedAt:   fixedNow.Add(-time.Hour),
	}
}

// memoryListings backs a MockListingRepository with a map so writes are visible to later reads
func memoryListings(t *testing.T, seed ...*domain.Listing) *mocks.MockListingRepository {
	t.Helper()

	var mu sync.Mutex
	store := make(map[string]domain.Listing)
	for _, l := range seed {
		store[l.ID] = *l
	}

	repo := mocks.NewMockListingRepository()
	repo.CreateFunc = func(ctx context.Context, listing *domain.Listing) error {
		mu.Lock()
		defer mu.Unlock()
		store[listing.ID] = *listing
		return nil
	}
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Listing, error) {
		mu.Lock()
		defer mu.Unlock()
		l, ok := store[id]
		if !ok {
			return nil, domain.ErrListingNotFound
		}
		return &l, nil
	}
	repo.FindByIDsFunc = func(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string]*domain.Listing)
		for _, id := range ids {
			if l, ok := store[id]; ok {
				out[id] = &l
			}
		}
		return out, nil
	}
	repo.SearchFunc = func(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]domain.Listing, 0, len(store))
		for _, l := range store {
			out = append(out, l)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	}
	repo.UpdateFunc = func(ctx context.Context, listing *domain.Listing) error {
		mu.Lock()
		defer mu.Unlock()
		current, ok := store[listing.ID]
		if !ok {
			return domain.ErrListingNotFound
		}
		updated := *listing
		updated.Reviews, updated.Rating = current.Reviews, current.Rating
		store[listing.ID] = updated
		return nil
	}
	repo.AppendReviewFunc = func(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error) {
		mu.Lock()
		defer mu.Unlock()
		l, ok := store[id]
		if !ok {
			return nil, domain.ErrListingNotFound
		}
		l.Reviews = append(append([]domain.Review{}, l.Reviews...), review)
		l.RecomputeRating()
		l.UpdatedAt = at
		store[id] = l
		return &l, nil
	}
	repo.AppendImageFunc = func(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error) {
		mu.Lock()
		defer mu.Unlock()
		l, ok := store[id]
		if !ok {
			return nil, domain.ErrListingNotFound
		}
		l.Images = append(append([]domain.Image{}, l.Images...), image)
		l.UpdatedAt = at
		store[id] = l
		return &l, nil
	}
	repo.DeleteFunc = func(ctx context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := store[id]; !ok {
			return domain.ErrListingNotFound
		}
		delete(store, id)
		return nil
	}
	return repo
}

// memoryAccounts backs a MockAccountRepository with the given accounts
func memoryAccounts(t *testing.T, seed ...*domain.Account) *mocks.MockAccountRepository {
	t.Helper()

	var mu sync.Mutex
	store := make(map[string]*domain.Account)
	for _, a := range seed {
		store[a.ID] = a
	}

	repo := mocks.NewMockAccountRepository()
	repo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
		mu.Lock()
		defer mu.Unlock()
		for _, a := range store {
			if a.EmailKey == account.EmailKey {
				return domain.ErrDuplicateAccount
			}
		}
		store[account.ID] = account
		return nil
	}
	repo.FindByEmailKeyFunc = func(ctx context.Context, emailKey string) (*domain.Account, error) {
		mu.Lock()
		defer mu.Unlock()
		for _, a := range store {
			if a.EmailKey == emailKey {
				return a, nil
			}
		}
		return nil, domain.ErrAccountNotFound
	}
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Account, error) {
		mu.Lock()
		defer mu.Unlock()
		if a, ok := store[id]; ok {
			return a, nil
		}
		return nil, domain.ErrAccountNotFound
	}
	repo.MarkHostFunc = func(ctx context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		a, ok := store[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		a.IsHost = true
		return nil
	}
	return repo
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }
