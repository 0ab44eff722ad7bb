package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

func TestReviewListFilter(t *testing.T) {
	assert.Equal(t, bson.M{"isActive": true}, reviewListFilter(application.ReviewFilter{}))
	assert.Equal(t,
		bson.M{"isActive": true, "foodItem": "Ramen", "station": "Noodle Bar"},
		reviewListFilter(application.ReviewFilter{FoodItem: " Ramen ", Station: "Noodle Bar"}),
	)
}

func TestFoodItemPipelineOnlyCountsActiveReviews(t *testing.T) {
	pipeline := foodItemPipeline("")
	require.Len(t, pipeline, 3)

	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, bson.M{"isActive": true}, pipeline[0][0].Value)

	assert.Equal(t, "$sort", pipeline[1][0].Key)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, pipeline[1][0].Value)

	assert.Equal(t, "$group", pipeline[2][0].Key)
	group, ok := pipeline[2][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"foodItem": "$foodItem", "station": "$station"}, group["_id"])
	assert.Equal(t, bson.M{"$sum": 1}, group["reviewCount"])
	assert.Equal(t, bson.M{"$sum": "$rating"}, group["ratingSum"])
	assert.Equal(t, bson.M{"$push": "$imageUrl"}, group["images"])
	assert.Equal(t, bson.M{"$max": "$createdAt"}, group["latestReviewAt"])
}

func TestFoodItemPipelineStationFilter(t *testing.T) {
	pipeline := foodItemPipeline("  Grill ")
	assert.Equal(t, bson.M{"isActive": true, "station": "Grill"}, pipeline[0][0].Value)
}

func TestSoftDeleteOnlyMatchesActiveReviews(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	assert.Equal(t, bson.M{"_id": id, "isActive": true}, softDeleteFilter(id))
	assert.Equal(t, bson.M{"$set": bson.M{"isActive": false, "deletedAt": at.UTC()}}, softDeleteUpdate(at))
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := parseObjectID(" " + id.Hex() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = parseObjectID("not-an-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewDocumentMapping(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	review := &domain.Review{
		FoodItem:  "Tacos",
		Station:   "Grill",
		Rating:    4,
		Comment:   "crispy",
		Reviewer:  "Sam",
		ImageURL:  "https://img.example/tacos.png",
		CreatedAt: created,
		IsActive:  true,
	}
	id := primitive.NewObjectID()

	doc := newReviewDocument(review, id)
	assert.Equal(t, id, doc.ID)
	assert.Nil(t, doc.DeletedAt)

	mapped := mapReviewDocument(doc)
	assert.Equal(t, id.Hex(), mapped.ID)
	assert.Equal(t, "Tacos", mapped.FoodItem)
	assert.Equal(t, 4, mapped.Rating)
	assert.True(t, mapped.IsActive)
	assert.Equal(t, created, mapped.CreatedAt)
}

func TestFoodItemGroupMapping(t *testing.T) {
	var doc foodItemGroupDocument
	doc.Key.FoodItem = "Pho"
	doc.Key.Station = "Noodle Bar"
	doc.ReviewCount = 3
	doc.RatingSum = 11
	doc.Images = []string{"", "https://img.example/pho.jpg"}

	group := mapFoodItemGroup(doc)
	assert.Equal(t, domain.FoodItemGroup{
		Name:        "Pho",
		Station:     "Noodle Bar",
		ReviewCount: 3,
		RatingSum:   11,
		Images:      []string{"", "https://img.example/pho.jpg"},
	}, group)
}

func TestFailedReviewDocument(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	reviews := []*domain.Review{
		{FoodItem: "Soup", Station: "Deli", Rating: 2, Reviewer: "Anonymous", IsActive: true},
		{FoodItem: "Salad", Station: "Deli", Rating: 5, Reviewer: "Kim", IsActive: true},
	}

	doc := newFailedReviewDocument(reviews, errors.New("connection reset"), at)
	assert.False(t, doc.ID.IsZero())
	assert.Equal(t, "connection reset", doc.Error)
	assert.Equal(t, domain.BatchRejected, doc.Status)
	assert.Equal(t, at, doc.FailedAt)
	require.Len(t, doc.Reviews, 2)

	batch := mapFailedReviewDocument(doc)
	assert.Equal(t, doc.ID.Hex(), batch.ID)
	require.Len(t, batch.Reviews, 2)
	assert.Empty(t, batch.Reviews[0].ID)
	assert.Equal(t, domain.BatchRejected, batch.Status)
	assert.Equal(t, "Salad", batch.Reviews[1].FoodItem)
}

func TestBatchStatus(t *testing.T) {
	assert.Equal(t, domain.BatchUnknown, batchStatus(fmt.Errorf("insert 3 reviews: %w", context.DeadlineExceeded)))
	assert.Equal(t, domain.BatchUnknown, batchStatus(mongo.BulkWriteException{
		WriteConcernError: &mongo.WriteConcernError{Code: 64, Message: "waiting for replication timed out"},
	}))
	assert.Equal(t, domain.BatchRejected, batchStatus(mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Index: 0, Code: 121, Message: "document failed validation"}}},
	}))
	assert.Equal(t, domain.BatchRejected, batchStatus(errors.New("not authorized")))
}

func TestStoredPrefix(t *testing.T) {
	writeErr := func(indexes ...int) error {
		ex := mongo.BulkWriteException{}
		for _, i := range indexes {
			ex.WriteErrors = append(ex.WriteErrors, mongo.BulkWriteError{WriteError: mongo.WriteError{Index: i, Code: 11000}})
		}
		return fmt.Errorf("insert: %w", ex)
	}

	assert.Equal(t, 3, storedPrefix(writeErr(3), 5))
	assert.Equal(t, 0, storedPrefix(writeErr(0), 5))
	assert.Equal(t, 1, storedPrefix(writeErr(4, 1), 5))
	assert.Equal(t, 0, storedPrefix(context.DeadlineExceeded, 5), "a timeout says nothing about what was written")
	assert.Equal(t, 0, storedPrefix(mongo.BulkWriteException{
		WriteErrors:       []mongo.BulkWriteError{{WriteError: mongo.WriteError{Index: 2}}},
		WriteConcernError: &mongo.WriteConcernError{Code: 64},
	}, 5))
}
