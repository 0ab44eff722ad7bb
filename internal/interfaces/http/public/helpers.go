package public

import (
	"math"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:        review.ID,
		FoodItem:  review.FoodItem,
		Station:   review.Station,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Reviewer:  review.Reviewer,
		ImageURL:  review.ImageURL,
		CreatedAt: review.CreatedAt,
		IsActive:  review.IsActive,
		DeletedAt: review.DeletedAt,
	}
}

func toFoodItemResponse(item domain.FoodItem) foodItemResponse {
	return foodItemResponse{
		Name:           item.Name,
		Station:        item.Station,
		ReviewCount:    item.ReviewCount,
		AverageRating:  roundRating(item.AverageRating),
		ImageURL:       item.ImageURL,
		LatestReviewAt: item.LatestReviewAt,
	}
}

func toStationResponse(station domain.Station) stationResponse {
	return stationResponse{
		ID:        station.ID,
		Name:      station.Name,
		CreatedAt: station.CreatedAt,
	}
}

// roundRating keeps two decimals.
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
