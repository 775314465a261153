package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const listingCollectionName = "items"

// ListingRepository implements domain.ListingRepository on MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "item_type", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(idxCtx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
		return nil, classify(fmt.Errorf("create indexes on %s: %w", listingCollectionName, err))
	}
	log.Info("Ensured indexes for listings collection")

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("MongoListingRepository"),
	}, nil
}

// classify marks connectivity failures as transient so callers may retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return err
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	r.logger.Debug("Inserting listing", zap.String("listing_id", listing.ID))

	_, err := r.collection.InsertOne(ctx, fromDomainListing(listing))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate listing id", zap.String("listing_id", listing.ID))
			return fmt.Errorf("%w: duplicate listing id %s", domain.ErrInvalidInput, listing.ID)
		}
		r.logger.Error("Failed to insert listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return classify(fmt.Errorf("db insert failed: %w", err))
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, classify(fmt.Errorf("db findone failed: %w", err))
	}
	return doc.toDomainListing(), nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list listings", zap.Error(err))
		return nil, classify(fmt.Errorf("db find failed: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, classify(fmt.Errorf("db cursor all failed: %w", err))
	}

	listings := make([]*domain.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = doc.toDomainListing()
	}
	return listings, nil
}

// allowedFrom lists the statuses a listing may be in before moving to next.
func allowedFrom(next domain.ListingStatus) []string {
	var from []string
	for _, s := range []domain.ListingStatus{domain.StatusAvailable, domain.StatusRehomed} {
		if s.CanTransitionTo(next) {
			from = append(from, string(s))
		}
	}
	return from
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus, at time.Time) (*domain.Listing, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": allowedFrom(status)}}
	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": at.UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc listingDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomainListing(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to update listing status", zap.String("listing_id", id), zap.Error(err))
		return nil, classify(fmt.Errorf("db update failed: %w", err))
	}

	current, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
}

func (r *ListingRepository) Ping(ctx context.Context) error {
	return classify(r.collection.Database().Client().Ping(ctx, readpref.Primary()))
}
