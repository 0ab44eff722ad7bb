package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// PingRepository reads the connectivity probe collection.
type PingRepository struct {
	collection *mongo.Collection
}

// NewPingRepository creates a new ping repository.
func NewPingRepository(db *mongo.Database, collectionName string) *PingRepository {
	return &PingRepository{collection: db.Collection(collectionName)}
}

// Latest returns the most recent ping document or domain.ErrNotFound.
func (r *PingRepository) Latest(ctx context.Context) (*PingDocument, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var doc PingDocument
	if err := r.collection.FindOne(ctx, bson.D{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// EnsureSample guarantees at least one ping document so /ping answers locally too.
func (r *PingRepository) EnsureSample(ctx context.Context, now time.Time) error {
	count, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = r.collection.InsertOne(ctx, PingDocument{Message: "pong", CreatedAt: now.UTC()})
	return err
}
