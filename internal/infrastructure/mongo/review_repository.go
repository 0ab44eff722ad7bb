package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// ReviewRepository implements application.ReviewRepository and ingest.Store using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new Mongo-backed review repository.
func NewReviewRepository(db *mongo.Database, collectionName string) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection(collectionName)}
}

// Find returns active reviews, newest first, together with the total number of matches.
func (r *ReviewRepository) Find(ctx context.Context, filter application.ReviewFilter, paging application.Paging) ([]domain.Review, int64, error) {
	mongoFilter := reviewListFilter(filter)

	total, err := r.collection.CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(paging.Skip())
	if paging.Limit > 0 {
		opts.SetLimit(int64(paging.Limit))
	}

	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// FindByID returns a review regardless of its active flag.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc ReviewDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find review %s: %w", id, err)
	}
	review := mapReviewDocument(doc)
	return &review, nil
}

// SoftDelete deactivates an active review. Missing or already inactive reviews yield ErrNotFound.
func (r *ReviewRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, softDeleteFilter(objectID), softDeleteUpdate(at))
	if err != nil {
		return fmt.Errorf("soft delete review %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every review document.
func (r *ReviewRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return result.DeletedCount, nil
}

// InsertOne stores a single review and assigns its ID.
func (r *ReviewRepository) InsertOne(ctx context.Context, review *domain.Review) error {
	id := primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, newReviewDocument(review, id)); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	review.ID = id.Hex()
	return nil
}

// InsertMany stores a batch in one ordered insert and assigns IDs to the
// reviews that were written. When the server rejects document k, the first k
// reviews are stored and keep their IDs.
func (r *ReviewRepository) InsertMany(ctx context.Context, reviews []*domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, len(reviews))
	docs := make([]any, len(reviews))
	for i, review := range reviews {
		ids[i] = primitive.NewObjectID()
		docs[i] = newReviewDocument(review, ids[i])
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		stored := storedPrefix(err, len(reviews))
		for i := 0; i < stored; i++ {
			reviews[i].ID = ids[i].Hex()
		}
		return fmt.Errorf("insert %d reviews (%d stored): %w", len(reviews), stored, err)
	}
	for i, review := range reviews {
		review.ID = ids[i].Hex()
	}
	return nil
}

// EnsureIndexes creates the indexes used by listings and aggregation.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "station", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "foodItem", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}
	return nil
}

// storedPrefix returns how many leading documents of an ordered insert of n
// were written before err. Only per-document write errors pin this down.
func storedPrefix(err error, n int) int {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 || bulkErr.WriteConcernError != nil {
		return 0
	}
	first := n
	for _, we := range bulkErr.WriteErrors {
		if we.Index < first {
			first = we.Index
		}
	}
	return max(first, 0)
}

func reviewListFilter(filter application.ReviewFilter) bson.M {
	mongoFilter := bson.M{"isActive": true}
	if v := strings.TrimSpace(filter.FoodItem); v != "" {
		mongoFilter["foodItem"] = v
	}
	if v := strings.TrimSpace(filter.Station); v != "" {
		mongoFilter["station"] = v
	}
	return mongoFilter
}

func softDeleteFilter(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "isActive": true}
}

func softDeleteUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"isActive":  false,
		"deletedAt": at.UTC(),
	}}
}
