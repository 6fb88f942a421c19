package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/mocks"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type recorder struct {
	mu      sync.Mutex
	results []string
}

func (r *recorder) observe(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return ""
	}
	return r.results[len(r.results)-1]
}

func countingRepo(calls *int) *mocks.MockListingRepository {
	repo := mocks.NewMockListingRepository()
	repo.SearchFunc = func(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
		*calls++
		return []domain.Listing{{ID: "a", Title: "Loft", Price: 320, Location: domain.Location{City: "Paris"}}}, nil
	}
	return repo
}

func TestListingCache_Tiers(t *testing.T) {
	_, client := setupTestRedis(t)
	remote := NewRedisRemote(client)
	ctx := context.Background()
	filter := domain.ListingFilter{City: "Paris"}

	calls := 0
	rec := &recorder{}
	first := NewListingCache(countingRepo(&calls), remote, Options{Observe: rec.observe})
	defer first.Close()

	got, err := first.Search(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ResultMiss, rec.last())

	got, err = first.Search(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 1, calls, "second search should be served locally")
	assert.Equal(t, ResultLocalHit, rec.last())

	// a second instance shares only the remote tier
	otherCalls := 0
	second := NewListingCache(countingRepo(&otherCalls), remote, Options{Observe: rec.observe})
	defer second.Close()

	got, err = second.Search(ctx, domain.ListingFilter{City: "PARIS"})
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 0, otherCalls, "filters differing only in case share a key")
	assert.Equal(t, ResultRemoteHit, rec.last())
}

func TestListingCache_MutationsInvalidate(t *testing.T) {
	_, client := setupTestRedis(t)
	remote := NewRedisRemote(client)
	ctx := context.Background()

	mutations := []struct {
		name string
		run  func(c *ListingCache) error
	}{
		{name: "create", run: func(c *ListingCache) error { return c.Create(ctx, &domain.Listing{ID: "n"}) }},
		{name: "update", run: func(c *ListingCache) error { return c.Update(ctx, &domain.Listing{ID: "a"}) }},
		{name: "delete", run: func(c *ListingCache) error { return c.Delete(ctx, "a") }},
		{name: "append review", run: func(c *ListingCache) error {
			_, err := c.AppendReview(ctx, "a", domain.Review{Rating: 5}, time.Now())
			return err
		}},
		{name: "append image", run: func(c *ListingCache) error {
			_, err := c.AppendImage(ctx, "a", domain.Image{URL: "u"}, time.Now())
			return err
		}},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			calls := 0
			writer := NewListingCache(countingRepo(&calls), remote, Options{})
			defer writer.Close()
			readerCalls := 0
			reader := NewListingCache(countingRepo(&readerCalls), remote, Options{})
			defer reader.Close()

			_, err := reader.Search(ctx, domain.ListingFilter{})
			require.NoError(t, err)
			_, err = reader.Search(ctx, domain.ListingFilter{})
			require.NoError(t, err)
			require.Equal(t, 1, readerCalls)

			require.NoError(t, m.run(writer))

			// the other instance observes the new generation
			_, err = reader.Search(ctx, domain.ListingFilter{})
			require.NoError(t, err)
			assert.Equal(t, 2, readerCalls)
		})
	}
}

func TestListingCache_FailedMutationKeepsGeneration(t *testing.T) {
	_, client := setupTestRedis(t)
	remote := NewRedisRemote(client)
	ctx := context.Background()

	repo := mocks.NewMockListingRepository()
	repo.DeleteFunc = func(ctx context.Context, id string) error { return domain.ErrListingNotFound }
	c := NewListingCache(repo, remote, Options{})
	defer c.Close()

	err := c.Delete(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	gen, err := readCounter(ctx, remote, generationKey)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)
}

func TestListingCache_RemoteDownFallsThrough(t *testing.T) {
	mr, client := setupTestRedis(t)
	remote := NewRedisRemote(client)
	mr.Close()

	calls := 0
	rec := &recorder{}
	c := NewListingCache(countingRepo(&calls), remote, Options{Observe: rec.observe})
	defer c.Close()

	for i := 0; i < 2; i++ {
		got, err := c.Search(context.Background(), domain.ListingFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, ResultBypass, rec.last())
}

// flakyRemote fails generation bumps while failIncr is set
type flakyRemote struct {
	Remote
	failIncr atomic.Bool
}

func (f *flakyRemote) Incr(ctx context.Context, key string) (int64, error) {
	if f.failIncr.Load() {
		return 0, errors.New("connection reset")
	}
	return f.Remote.Incr(ctx, key)
}

func TestListingCache_FailedBumpBypassesUntilRetried(t *testing.T) {
	_, client := setupTestRedis(t)
	remote := &flakyRemote{Remote: NewRedisRemote(client)}
	ctx := context.Background()

	calls := 0
	rec := &recorder{}
	c := NewListingCache(countingRepo(&calls), remote, Options{Observe: rec.observe})
	defer c.Close()

	_, err := c.Search(ctx, domain.ListingFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	remote.failIncr.Store(true)
	require.NoError(t, c.Create(ctx, &domain.Listing{ID: "n"}))

	// the old generation is still in the remote tier and must not be served
	_, err = c.Search(ctx, domain.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, ResultBypass, rec.last())

	remote.failIncr.Store(false)
	_, err = c.Search(ctx, domain.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "first search after recovery misses on the new generation")
	assert.Equal(t, ResultMiss, rec.last())

	gen, err := readCounter(ctx, remote, generationKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	_, err = c.Search(ctx, domain.ListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, ResultLocalHit, rec.last())
}

func TestSearchKey(t *testing.T) {
	floor := 100.0
	a := searchKey(1, domain.ListingFilter{Text: "Loft", MinPrice: &floor})
	b := searchKey(1, domain.ListingFilter{Text: "loft", MinPrice: &floor})
	c := searchKey(2, domain.ListingFilter{Text: "loft", MinPrice: &floor})
	d := searchKey(1, domain.ListingFilter{Text: "loft"})
	e := searchKey(1, domain.ListingFilter{City: "loft"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.NotEqual(t, b, d)
	assert.NotEqual(t, d, e)
	assert.LessOrEqual(t, len(a), 250, "keys must fit memcached's limit")
}
