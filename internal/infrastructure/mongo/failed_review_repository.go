package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// FailedReviewRepository is the dead-letter store for batches the flusher could not insert.
type FailedReviewRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewFailedReviewRepository creates a new Mongo-backed dead-letter repository.
func NewFailedReviewRepository(db *mongo.Database, collectionName string) *FailedReviewRepository {
	return &FailedReviewRepository{collection: db.Collection(collectionName), now: time.Now}
}

// Record implements ingest.DeadLetter.
func (r *FailedReviewRepository) Record(ctx context.Context, reviews []*domain.Review, cause error) error {
	if len(reviews) == 0 {
		return nil
	}
	doc := newFailedReviewDocument(reviews, cause, r.now())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("record failed batch: %w", err)
	}
	return nil
}

// List returns dead-lettered batches, most recent first.
func (r *FailedReviewRepository) List(ctx context.Context, paging application.Paging) ([]domain.FailedReview, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "failedAt", Value: -1}}).
		SetSkip(paging.Skip())
	if paging.Limit > 0 {
		opts.SetLimit(int64(paging.Limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find failed reviews: %w", err)
	}
	defer cursor.Close(ctx)

	batches := make([]domain.FailedReview, 0)
	for cursor.Next(ctx) {
		var doc FailedReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		batches = append(batches, mapFailedReviewDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}

// newFailedReviewDocument embeds the reviews with NilObjectIDs. Whether they
// reached the collection depends on the status derived from cause.
func newFailedReviewDocument(reviews []*domain.Review, cause error, at time.Time) FailedReviewDocument {
	docs := make([]ReviewDocument, 0, len(reviews))
	for _, review := range reviews {
		docs = append(docs, newReviewDocument(review, primitive.NilObjectID))
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return FailedReviewDocument{
		ID:       primitive.NewObjectID(),
		Reviews:  docs,
		Error:    message,
		Status:   batchStatus(cause),
		FailedAt: at.UTC(),
	}
}

// batchStatus is BatchUnknown when the insert may have been applied before the error surfaced.
func batchStatus(cause error) string {
	var bulkErr mongo.BulkWriteException
	switch {
	case cause == nil:
		return domain.BatchUnknown
	case mongo.IsTimeout(cause), mongo.IsNetworkError(cause),
		errors.Is(cause, context.DeadlineExceeded), errors.Is(cause, context.Canceled):
		return domain.BatchUnknown
	case errors.As(cause, &bulkErr) && bulkErr.WriteConcernError != nil:
		return domain.BatchUnknown
	}
	return domain.BatchRejected
}

// EnsureIndexes creates the failedAt index used by List.
func (r *FailedReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "failedAt", Value: -1}},
		Options: options.Index().SetName("idx_failed_review_failedAt"),
	})
	if err != nil {
		return fmt.Errorf("create failed review index: %w", err)
	}
	return nil
}
