package admin

import "time"

type clearReviewsResponse struct {
	Deleted int64 `json:"deleted"`
}

type failedReviewItem struct {
	FoodItem  string    `json:"foodItem"`
	Station   string    `json:"station"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Reviewer  string    `json:"reviewer"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type failedBatchResponse struct {
	ID       string             `json:"id"`
	Error    string             `json:"error"`
	Status   string             `json:"status"`
	FailedAt time.Time          `json:"failedAt"`
	Reviews  []failedReviewItem `json:"reviews"`
}

type failedBatchListResponse struct {
	Items []failedBatchResponse `json:"items"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
