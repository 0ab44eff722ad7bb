package mongo

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// ReviewDocument is the stored shape of a review.
type ReviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	FoodItem  string             `bson:"foodItem"`
	Station   string             `bson:"station"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment,omitempty"`
	Reviewer  string             `bson:"reviewer"`
	ImageURL  string             `bson:"imageUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	IsActive  bool               `bson:"isActive"`
	DeletedAt *time.Time         `bson:"deletedAt,omitempty"`
}

// StationDocument is the stored shape of a station.
type StationDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// FailedReviewDocument keeps one batch that could not be inserted.
type FailedReviewDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Reviews  []ReviewDocument   `bson:"reviews"`
	Error    string             `bson:"error"`
	Status   string             `bson:"status"`
	FailedAt time.Time          `bson:"failedAt"`
}

// PingDocument backs the /ping probe.
type PingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type foodItemGroupDocument struct {
	Key struct {
		FoodItem string `bson:"foodItem"`
		Station  string `bson:"station"`
	} `bson:"_id"`
	ReviewCount    int       `bson:"reviewCount"`
	RatingSum      int       `bson:"ratingSum"`
	Images         []string  `bson:"images"`
	LatestReviewAt time.Time `bson:"latestReviewAt"`
}

func newReviewDocument(review *domain.Review, id primitive.ObjectID) ReviewDocument {
	return ReviewDocument{
		ID:        id,
		FoodItem:  review.FoodItem,
		Station:   review.Station,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Reviewer:  review.Reviewer,
		ImageURL:  review.ImageURL,
		CreatedAt: review.CreatedAt.UTC(),
		IsActive:  review.IsActive,
		DeletedAt: review.DeletedAt,
	}
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	id := ""
	if !doc.ID.IsZero() {
		id = doc.ID.Hex()
	}
	return domain.Review{
		ID:        id,
		FoodItem:  doc.FoodItem,
		Station:   doc.Station,
		Rating:    doc.Rating,
		Comment:   doc.Comment,
		Reviewer:  doc.Reviewer,
		ImageURL:  doc.ImageURL,
		CreatedAt: doc.CreatedAt,
		IsActive:  doc.IsActive,
		DeletedAt: doc.DeletedAt,
	}
}

func mapStationDocument(doc StationDocument) domain.Station {
	return domain.Station{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
	}
}

func mapFailedReviewDocument(doc FailedReviewDocument) domain.FailedReview {
	reviews := make([]domain.Review, 0, len(doc.Reviews))
	for _, r := range doc.Reviews {
		reviews = append(reviews, mapReviewDocument(r))
	}
	return domain.FailedReview{
		ID:       doc.ID.Hex(),
		Reviews:  reviews,
		Error:    doc.Error,
		Status:   doc.Status,
		FailedAt: doc.FailedAt,
	}
}

func mapFoodItemGroup(doc foodItemGroupDocument) domain.FoodItemGroup {
	return domain.FoodItemGroup{
		Name:           doc.Key.FoodItem,
		Station:        doc.Key.Station,
		ReviewCount:    doc.ReviewCount,
		RatingSum:      doc.RatingSum,
		Images:         append([]string{}, doc.Images...),
		LatestReviewAt: doc.LatestReviewAt,
	}
}

// parseObjectID treats malformed identifiers as missing records.
func parseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return objectID, nil
}
