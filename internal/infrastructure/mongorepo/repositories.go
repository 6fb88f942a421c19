package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/you/staysvc/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		AccountsCollection: {
			{Keys: bson.D{{Key: "email_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ListingsCollection: {
			{Keys: bson.D{{Key: "host_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// AccountRepository implements domain.AccountRepository on MongoDB
type AccountRepository struct {
	col *mongo.Collection
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *mongo.Database) domain.AccountRepository {
	return &AccountRepository{col: db.Collection(AccountsCollection)}
}

// Create implements domain.AccountRepository
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if _, err := r.col.InsertOne(ctx, toAccountDoc(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAccount
		}
		return fmt.Errorf("mongo insert account: %w", err)
	}
	return nil
}

// FindByEmailKey implements domain.AccountRepository
func (r *AccountRepository) FindByEmailKey(ctx context.Context, emailKey string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email_key": emailKey})
}

// FindByID implements domain.AccountRepository
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// MarkHost implements domain.AccountRepository
func (r *AccountRepository) MarkHost(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_host": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ListingRepository implements domain.ListingRepository on MongoDB
type ListingRepository struct {
	col *mongo.Collection
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *mongo.Database) domain.ListingRepository {
	return &ListingRepository{col: db.Collection(ListingsCollection)}
}

// Create implements domain.ListingRepository
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if _, err := r.col.InsertOne(ctx, toListingDoc(listing)); err != nil {
		return fmt.Errorf("mongo insert listing: %w", err)
	}
	return nil
}

// FindByID implements domain.ListingRepository
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindByIDs implements domain.ListingRepository. Unknown ids are absent from the result.
func (r *ListingRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	out := make(map[string]*domain.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		out[docs[i].ID] = docs[i].toDomain()
	}
	return out, nil
}

// Search implements domain.ListingRepository
func (r *ListingRepository) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := r.find(ctx, listingFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	listings := make([]domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, *docs[i].toDomain())
	}
	return listings, nil
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]listingDoc, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update implements domain.ListingRepository. Only host-editable fields are set,
// so a concurrent review is never overwritten.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc := toListingDoc(listing)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": listing.ID}, bson.M{"$set": bson.M{
		"title":         doc.Title,
		"description":   doc.Description,
		"property_type": doc.PropertyType,
		"price":         doc.Price,
		"location":      doc.Location,
		"images":        doc.Images,
		"amenities":     doc.Amenities,
		"capacity":      doc.Capacity,
		"updated_at":    doc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// AppendReview implements domain.ListingRepository. The review is appended and the
// rating recomputed in a single pipeline update.
func (r *ListingRepository) AppendReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Listing, error) {
	return r.findAndModify(ctx, id, appendReviewPipeline(review, at))
}

// AppendImage implements domain.ListingRepository
func (r *ListingRepository) AppendImage(ctx context.Context, id string, image domain.Image, at time.Time) (*domain.Listing, error) {
	return r.findAndModify(ctx, id, bson.M{
		"$push": bson.M{"images": image.URL},
		"$set":  bson.M{"updated_at": at},
	})
}

func (r *ListingRepository) findAndModify(ctx context.Context, id string, update any) (*domain.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// appendReviewPipeline pushes review and sets rating to the mean rounded half up to
// two decimals, matching domain.Listing.RecomputeRating.
func appendReviewPipeline(review domain.Review, at time.Time) mongo.Pipeline {
	doc := reviewDoc{AccountID: review.AccountID, Rating: review.Rating, Comment: review.Comment, CreatedAt: review.CreatedAt}
	mean := bson.M{"$avg": "$reviews.rating"}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			// $literal keeps a comment starting with $ from being read as a field path
			"reviews":    bson.M{"$concatArrays": bson.A{bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}}, bson.A{bson.M{"$literal": doc}}}},
			"updated_at": at,
		}}},
		{{Key: "$set", Value: bson.M{
			"rating": bson.M{"$divide": bson.A{
				bson.M{"$floor": bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{mean, 100}}, 0.5}}},
				100,
			}},
		}}},
	}
}

// Delete implements domain.ListingRepository
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// listingFilter translates search criteria into a conjunctive query document.
// Text is matched literally and case-insensitively.
func listingFilter(f domain.ListingFilter) bson.M {
	filter := bson.M{}
	if f.Text != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	if f.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

// BookingRepository implements domain.BookingRepository on MongoDB
type BookingRepository struct {
	col *mongo.Collection
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *mongo.Database) domain.BookingRepository {
	return &BookingRepository{col: db.Collection(BookingsCollection)}
}

// Create implements domain.BookingRepository
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if _, err := r.col.InsertOne(ctx, toBookingDoc(booking)); err != nil {
		return fmt.Errorf("mongo insert booking: %w", err)
	}
	return nil
}

// ListByGuest implements domain.BookingRepository
func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, *docs[i].toDomain())
	}
	return bookings, nil
}
