package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/you/staysvc/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepositoryImpl implements domain.ListingRepository using GORM
type ListingRepositoryImpl struct {
	db *gorm.DB
}

// DBListing represents the database model for Listing. Images, amenities and
// reviews are stored as JSON columns. The *Key columns hold lowercased copies
// used for case-insensitive search, since LOWER() only folds ASCII on sqlite.
type DBListing struct {
	ID             string `gorm:"primaryKey;size:36"`
	Title          string `gorm:"size:255"`
	TitleKey       string `gorm:"size:255"`
	Description    string
	DescriptionKey string
	PropertyType   string  `gorm:"size:64"`
	Price          float64 `gorm:"index"`
	City           string  `gorm:"size:128"`
	CityKey        string  `gorm:"index;size:128"`
	Country        string  `gorm:"size:128"`
	Images         datatypes.JSONType[[]domain.Image]
	Amenities      datatypes.JSONType[[]string]
	Guests         int
	Bedrooms       int
	Beds           int
	Bathrooms      int
	HostID         string `gorm:"index;size:36"`
	Rating         float64
	Reviews        datatypes.JSONType[[]domain.Review]
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

// editableColumns are the columns Update may write
var editableColumns = []string{
	"title", "title_key", "description", "description_key", "property_type", "price",
	"city", "city_key", "country", "images", "amenities",
	"guests", "bedrooms", "beds", "bathrooms", "updated_at",
}

// TableName returns the table name for GORM
func (DBListing) TableName() string {
	return "listings"
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) domain.ListingRepository {
	return &ListingRepositoryImpl{db: db}
}

// Create implements domain.ListingRepository
func (r *ListingRepositoryImpl) Create(ctx context.Context, listing *domain.Listing) error {
	row := r.domainToDB(listing)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	listing.CreatedAt = row.CreatedAt
	listing.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.ListingRepository
func (r *ListingRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var row DBListing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&row), nil
}

// FindByIDs implements domain.ListingRepository. Unknown ids are absent from the result.
func (r *ListingRepositoryImpl) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	out := make(map[string]*domain.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []DBListing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = r.dbToDomain(&rows[i])
	}
	return out, nil
}

// Search implements domain.ListingRepository
func (r *ListingRepositoryImpl) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	q := r.db.WithContext(ctx).Model(&DBListing{})
	if filter.Text != "" {
		p := likePattern(filter.Text)
		q = q.Where("(title_key LIKE ? ESCAPE '\\' OR description_key LIKE ? ESCAPE '\\')", p, p)
	}
	if filter.City != "" {
		q = q.Where("city_key LIKE ? ESCAPE '\\'", likePattern(filter.City))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	var rows []DBListing
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(rows))
	for i := range rows {
		listings = append(listings, *r.dbToDomain(&rows[i]))
	}
	return listings, nil
}

// Update implements domain.ListingRepository
func (r *ListingRepositoryImpl) Update(ctx context.Context, listing *domain.Listing) error {
	row := r.domainToDB(listing)
	res := r.db.WithContext(ctx).Model(&DBListing{ID: listing.ID}).Select(editableColumns).Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	listing.UpdatedAt = row.UpdatedAt
	return nil
}

// AppendReview implements domain.ListingRepository
func (r *ListingRepositoryImpl) AppendReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error) {
	return r.modify(ctx, id, func(l *domain.Listing) map[string]any {
		l.Reviews = append(l.Reviews, review)
		l.RecomputeRating()
		return map[string]any{
			"reviews": datatypes.NewJSONType(l.Reviews),
			"rating":  l.Rating,
		}
	}, at)
}

// AppendImage implements domain.ListingRepository
func (r *ListingRepositoryImpl) AppendImage(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error) {
	return r.modify(ctx, id, func(l *domain.Listing) map[string]any {
		l.Images = append(l.Images, image)
		return map[string]any{"images": datatypes.NewJSONType(l.Images)}
	}, at)
}

// modify applies change to the locked row and writes back only the columns it returns
func (r *ListingRepositoryImpl) modify(ctx context.Context, id string, change func(*domain.Listing) map[string]any, at time.Time) (*domain.Listing, error) {
	var out *domain.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DBListing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrListingNotFound
			}
			return err
		}

		listing := r.dbToDomain(&row)
		cols := change(listing)
		listing.UpdatedAt = at
		cols["updated_at"] = at
		if err := tx.Model(&DBListing{ID: id}).Updates(cols).Error; err != nil {
			return err
		}
		out = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete implements domain.ListingRepository
func (r *ListingRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBListing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// searchKey folds s the same way for stored keys and query patterns
func searchKey(s string) string {
	return strings.ToLower(s)
}

// likePattern builds a case-insensitive substring pattern with LIKE wildcards escaped
func likePattern(s string) string {
	s = searchKey(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// domainToDB converts domain listing to database listing
func (r *ListingRepositoryImpl) domainToDB(l *domain.Listing) *DBListing {
	return &DBListing{
		ID:             l.ID,
		Title:          l.Title,
		TitleKey:       searchKey(l.Title),
		Description:    l.Description,
		DescriptionKey: searchKey(l.Description),
		PropertyType:   l.PropertyType,
		Price:          l.Price,
		City:           l.Location.City,
		CityKey:        searchKey(l.Location.City),
		Country:        l.Location.Country,
		Images:         datatypes.NewJSONType(nonNil(l.Images)),
		Amenities:      datatypes.NewJSONType(nonNil(l.Amenities)),
		Guests:         l.Capacity.Guests,
		Bedrooms:       l.Capacity.Bedrooms,
		Beds:           l.Capacity.Beds,
		Bathrooms:      l.Capacity.Bathrooms,
		HostID:         l.HostID,
		Rating:         l.Rating,
		Reviews:        datatypes.NewJSONType(nonNil(l.Reviews)),
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// BackfillSearchKeys fills the search key columns of rows written before they existed
func BackfillSearchKeys(ctx context.Context, db *gorm.DB) error {
	var rows []DBListing
	err := db.WithContext(ctx).
		Select("id", "title", "description", "city").
		Where("city_key = '' OR city_key IS NULL").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		err := db.WithContext(ctx).Model(&DBListing{ID: row.ID}).UpdateColumns(map[string]any{
			"title_key":       searchKey(row.Title),
			"description_key": searchKey(row.Description),
			"city_key":        searchKey(row.City),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// dbToDomain converts database listing to domain listing
func (r *ListingRepositoryImpl) dbToDomain(row *DBListing) *domain.Listing {
	return &domain.Listing{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		PropertyType: row.PropertyType,
		Price:        row.Price,
		Location:     domain.Location{City: row.City, Country: row.Country},
		Images:       nonNil(row.Images.Data()),
		Amenities:    nonNil(row.Amenities.Data()),
		Capacity: domain.Capacity{
			Guests:    row.Guests,
			Bedrooms:  row.Bedrooms,
			Beds:      row.Beds,
			Bathrooms: row.Bathrooms,
		},
		HostID:    row.HostID,
		Rating:    row.Rating,
		Reviews:   nonNil(row.Reviews.Data()),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// nonNil keeps JSON arrays from being stored or rendered as null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
