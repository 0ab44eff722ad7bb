package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// StationRepository implements application.StationRepository using MongoDB.
type StationRepository struct {
	collection *mongo.Collection
}

// NewStationRepository creates a new Mongo-backed station repository.
func NewStationRepository(db *mongo.Database, collectionName string) *StationRepository {
	return &StationRepository{collection: db.Collection(collectionName)}
}

// Find returns every station ordered by name.
func (r *StationRepository) Find(ctx context.Context) ([]domain.Station, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find stations: %w", err)
	}
	defer cursor.Close(ctx)

	stations := make([]domain.Station, 0)
	for cursor.Next(ctx) {
		var doc StationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stations = append(stations, mapStationDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// Create inserts a station and assigns its ID. An existing name yields ErrDuplicate.
func (r *StationRepository) Create(ctx context.Context, station *domain.Station) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": station.Name}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check station %q: %w", station.Name, err)
	}
	if count > 0 {
		return domain.ErrDuplicate
	}

	id := primitive.NewObjectID()
	doc := StationDocument{ID: id, Name: station.Name, CreatedAt: station.CreatedAt.UTC()}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		// the unique index catches concurrent creates that passed the check above
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert station %q: %w", station.Name, err)
	}
	station.ID = id.Hex()
	return nil
}

// EnsureIndexes creates the unique index on name.
func (r *StationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("station_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create station index: %w", err)
	}
	return nil
}

// Seed inserts the named stations that do not exist yet and reports how many were added.
func (r *StationRepository) Seed(ctx context.Context, names []string, now time.Time) (int, error) {
	added := 0
	for _, name := range names {
		station, err := domain.NewStation(name, now)
		if err != nil {
			return added, err
		}
		result, err := r.collection.UpdateOne(ctx,
			bson.M{"name": station.Name},
			bson.M{"$setOnInsert": bson.M{"name": station.Name, "createdAt": station.CreatedAt.UTC()}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return added, fmt.Errorf("seed station %q: %w", station.Name, err)
		}
		if result.UpsertedCount > 0 {
			added++
		}
	}
	return added, nil
}
