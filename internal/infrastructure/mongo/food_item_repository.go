package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// FoodItemRepository aggregates active reviews into per-(food item, station) groups.
type FoodItemRepository struct {
	reviews *mongo.Collection
}

// NewFoodItemRepository reads from the review collection.
func NewFoodItemRepository(db *mongo.Database, reviewCollection string) *FoodItemRepository {
	return &FoodItemRepository{reviews: db.Collection(reviewCollection)}
}

// Summaries runs the aggregation for one station, or all stations when station is empty.
func (r *FoodItemRepository) Summaries(ctx context.Context, station string) ([]domain.FoodItemGroup, error) {
	cursor, err := r.reviews.Aggregate(ctx, foodItemPipeline(station))
	if err != nil {
		return nil, fmt.Errorf("aggregate food items: %w", err)
	}
	defer cursor.Close(ctx)

	groups := make([]domain.FoodItemGroup, 0)
	for cursor.Next(ctx) {
		var doc foodItemGroupDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		groups = append(groups, mapFoodItemGroup(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// foodItemPipeline sorts before grouping so $push collects images newest first.
func foodItemPipeline(station string) mongo.Pipeline {
	match := bson.M{"isActive": true}
	if station = strings.TrimSpace(station); station != "" {
		match["station"] = station
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            bson.M{"foodItem": "$foodItem", "station": "$station"},
			"reviewCount":    bson.M{"$sum": 1},
			"ratingSum":      bson.M{"$sum": "$rating"},
			"images":         bson.M{"$push": "$imageUrl"},
			"latestReviewAt": bson.M{"$max": "$createdAt"},
		}}},
	}
}
