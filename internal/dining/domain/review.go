package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinRating       = 1
	MaxRating       = 5
	DefaultReviewer = "Anonymous"

	MaxCommentRunes  = 1000
	MaxReviewerRunes = 80
	MaxNameRunes     = 120
)

// Review is a single rating of a food item served at a station.
// Deletion only flips IsActive and stamps DeletedAt.
type Review struct {
	ID        string
	FoodItem  string
	Station   string
	Rating    int
	Comment   string
	Reviewer  string
	ImageURL  string
	CreatedAt time.Time
	IsActive  bool
	DeletedAt *time.Time
}

// ReviewInput is the raw submission before normalisation.
type ReviewInput struct {
	FoodItem string
	Station  string
	Rating   int
	Comment  string
	Reviewer string
	ImageURL string
}

// NewReview validates the input and returns an active review stamped with now.
func NewReview(in ReviewInput, now time.Time) (*Review, error) {
	foodItem := strings.TrimSpace(in.FoodItem)
	if foodItem == "" {
		return nil, invalid("foodItem", "is required")
	}
	if utf8.RuneCountInString(foodItem) > MaxNameRunes {
		return nil, invalid("foodItem", "must be at most %d characters", MaxNameRunes)
	}

	station := strings.TrimSpace(in.Station)
	if station == "" {
		return nil, invalid("station", "is required")
	}
	if utf8.RuneCountInString(station) > MaxNameRunes {
		return nil, invalid("station", "must be at most %d characters", MaxNameRunes)
	}

	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, invalid("rating", "must be between %d and %d", MinRating, MaxRating)
	}

	comment := strings.TrimSpace(in.Comment)
	if utf8.RuneCountInString(comment) > MaxCommentRunes {
		return nil, invalid("comment", "must be at most %d characters", MaxCommentRunes)
	}

	reviewer := strings.TrimSpace(in.Reviewer)
	if reviewer == "" {
		reviewer = DefaultReviewer
	}
	if utf8.RuneCountInString(reviewer) > MaxReviewerRunes {
		return nil, invalid("reviewer", "must be at most %d characters", MaxReviewerRunes)
	}

	imageURL, err := normalizeImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	return &Review{
		FoodItem:  foodItem,
		Station:   station,
		Rating:    in.Rating,
		Comment:   comment,
		Reviewer:  reviewer,
		ImageURL:  imageURL,
		CreatedAt: now.UTC(),
		IsActive:  true,
	}, nil
}

func normalizeImageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", invalid("imageUrl", "must be an absolute http(s) URL")
	}
	return trimmed, nil
}
