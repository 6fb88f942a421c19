package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/you/staysvc/domain"
)

// Lookup outcomes reported to the observer
const (
	ResultLocalHit  = "local_hit"
	ResultRemoteHit = "remote_hit"
	ResultMiss      = "miss"
	ResultBypass    = "bypass"
)

const generationKey = "listings:generation"

// Options tunes the listing cache
type Options struct {
	LocalSize int64
	LocalTTL  time.Duration
	RemoteTTL time.Duration
	// Observe is called with one of the Result* values on every search
	Observe func(result string)
}

// ListingCache decorates a domain.ListingRepository with a two tier search cache.
// Search results are keyed by a generation counter held in the remote tier and
// every mutation bumps the generation. If a bump fails, this instance bypasses
// the cache until a retried bump succeeds; other instances may serve the old
// generation for up to RemoteTTL in that window.
type ListingCache struct {
	next      domain.ListingRepository
	local     *ccache.Cache[[]domain.Listing]
	remote    Remote
	localTTL  time.Duration
	remoteTTL time.Duration
	observe   func(string)
	// pendingBump is set while a generation bump is owed to the remote tier
	pendingBump atomic.Bool
}

// NewListingCache wraps next with an in-process tier and the given remote tier
func NewListingCache(next domain.ListingRepository, remote Remote, opts Options) *ListingCache {
	if opts.LocalSize <= 0 {
		opts.LocalSize = 1000
	}
	if opts.LocalTTL <= 0 {
		opts.LocalTTL = 30 * time.Second
	}
	if opts.RemoteTTL <= 0 {
		opts.RemoteTTL = 5 * time.Minute
	}
	observe := opts.Observe
	if observe == nil {
		observe = func(string) {}
	}
	return &ListingCache{
		next:      next,
		local:     ccache.New(ccache.Configure[[]domain.Listing]().MaxSize(opts.LocalSize)),
		remote:    remote,
		localTTL:  opts.LocalTTL,
		remoteTTL: opts.RemoteTTL,
		observe:   observe,
	}
}

// Close stops the local cache worker
func (c *ListingCache) Close() {
	c.local.Stop()
}

// Search implements domain.ListingRepository
func (c *ListingCache) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if c.pendingBump.Load() && !c.bump(ctx) {
		c.observe(ResultBypass)
		return c.next.Search(ctx, filter)
	}

	gen, err := readCounter(ctx, c.remote, generationKey)
	if err != nil {
		log.Printf("CACHE_BYPASS: reading generation failed: %v", err)
		c.observe(ResultBypass)
		return c.next.Search(ctx, filter)
	}
	key := searchKey(gen, filter)

	if item := c.local.Get(key); item != nil && !item.Expired() {
		c.observe(ResultLocalHit)
		return item.Value(), nil
	}

	data, err := c.remote.Get(ctx, key)
	switch {
	case err == nil:
		var listings []domain.Listing
		jerr := json.Unmarshal(data, &listings)
		if jerr == nil {
			c.local.Set(key, listings, c.localTTL)
			c.observe(ResultRemoteHit)
			return listings, nil
		}
		log.Printf("CACHE_CORRUPT: key=%s error=%v", key, jerr)
	case !errors.Is(err, ErrMiss):
		log.Printf("CACHE_ERROR: key=%s error=%v", key, err)
	}

	c.observe(ResultMiss)
	listings, err := c.next.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.local.Set(key, listings, c.localTTL)
	if payload, err := json.Marshal(listings); err == nil {
		if err := c.remote.Set(ctx, key, payload, c.remoteTTL); err != nil {
			log.Printf("CACHE_ERROR: key=%s error=%v", key, err)
		}
	}
	return listings, nil
}

// Create implements domain.ListingRepository
func (c *ListingCache) Create(ctx context.Context, listing *domain.Listing) error {
	if err := c.next.Create(ctx, listing); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update implements domain.ListingRepository
func (c *ListingCache) Update(ctx context.Context, listing *domain.Listing) error {
	if err := c.next.Update(ctx, listing); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete implements domain.ListingRepository
func (c *ListingCache) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// AppendReview implements domain.ListingRepository
func (c *ListingCache) AppendReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error) {
	listing, err := c.next.AppendReview(ctx, id, review, at)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return listing, nil
}

// AppendImage implements domain.ListingRepository
func (c *ListingCache) AppendImage(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error) {
	listing, err := c.next.AppendImage(ctx, id, image, at)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return listing, nil
}

// FindByID implements domain.ListingRepository
func (c *ListingCache) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	return c.next.FindByID(ctx, id)
}

// FindByIDs implements domain.ListingRepository
func (c *ListingCache) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	return c.next.FindByIDs(ctx, ids)
}

func (c *ListingCache) invalidate(ctx context.Context) {
	c.local.Clear()
	c.pendingBump.Store(true)
	c.bump(ctx)
}

// bump advances the remote generation and reports whether it succeeded
func (c *ListingCache) bump(ctx context.Context) bool {
	if _, err := c.remote.Incr(ctx, generationKey); err != nil {
		log.Printf("CACHE_ERROR: bumping generation failed: %v", err)
		return false
	}
	c.pendingBump.Store(false)
	c.local.Clear()
	return true
}

// searchKey derives a fixed length key from the normalized filter
func searchKey(gen int64, f domain.ListingFilter) string {
	bound := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	norm := strings.Join([]string{
		strings.ToLower(f.Text),
		strings.ToLower(f.City),
		bound(f.MinPrice),
		bound(f.MaxPrice),
	}, "\x00")
	return fmt.Sprintf("listings:v%d:%x", gen, sha256.Sum256([]byte(norm)))
}

var _ domain.ListingRepository = (*ListingCache)(nil)
