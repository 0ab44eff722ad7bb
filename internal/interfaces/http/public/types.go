package public

import "time"

type createReviewRequest struct {
	FoodItem string `json:"foodItem" validate:"required,max=120"`
	Station  string `json:"station" validate:"required,max=120"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment" validate:"max=1000"`
	Reviewer string `json:"reviewer" validate:"max=80"`
	ImageURL string `json:"imageUrl" validate:"omitempty,http_url"`
}

type createStationRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type reviewResponse struct {
	ID        string     `json:"id"`
	FoodItem  string     `json:"foodItem"`
	Station   string     `json:"station"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	Reviewer  string     `json:"reviewer"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	IsActive  bool       `json:"isActive"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int64            `json:"total"`
}

type foodItemResponse struct {
	Name           string    `json:"name"`
	Station        string    `json:"station"`
	ReviewCount    int       `json:"reviewCount"`
	AverageRating  float64   `json:"averageRating"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	LatestReviewAt time.Time `json:"latestReviewAt"`
}

type stationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type uploadResponse struct {
	URL         string `json:"url"`
	PublicID    string `json:"publicId"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}
