package application

import (
	"context"
	"io"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// ReviewRepository is the read/delete port for stored reviews.
// Writes go through ReviewWriter so they can be buffered.
type ReviewRepository interface {
	Find(ctx context.Context, filter ReviewFilter, paging Paging) ([]domain.Review, int64, error)
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ReviewWriter persists a new review, assigning its ID.
type ReviewWriter interface {
	Write(ctx context.Context, review *domain.Review) error
}

// FoodItemRepository returns raw per-(food item, station) aggregates of active reviews.
type FoodItemRepository interface {
	Summaries(ctx context.Context, station string) ([]domain.FoodItemGroup, error)
}

// StationRepository stores the station reference data.
type StationRepository interface {
	Find(ctx context.Context) ([]domain.Station, error)
	Create(ctx context.Context, station *domain.Station) error
}

// FailedReviewRepository lists dead-lettered batches.
type FailedReviewRepository interface {
	List(ctx context.Context, paging Paging) ([]domain.FailedReview, error)
}

// ImageUploader pushes an image to the hosting service and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (string, error)
}

// CacheRecorder receives food item cache outcomes ("hit", "miss", "bypass").
type CacheRecorder interface {
	ObserveCache(result string)
}

// ReviewFilter narrows review listings. Empty fields match everything.
type ReviewFilter struct {
	FoodItem string
	Station  string
}

// Paging controls pagination.
type Paging struct {
	Page  int
	Limit int
}

// Skip returns the number of records before the requested page.
func (p Paging) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return int64((p.Page - 1) * p.Limit)
}

// ReviewQueryService describes review read use-cases.
type ReviewQueryService interface {
	List(ctx context.Context, filter ReviewFilter, paging Paging) ([]domain.Review, int64, error)
	Detail(ctx context.Context, id string) (*domain.Review, error)
}

// ReviewCommandService describes review write use-cases.
type ReviewCommandService interface {
	Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}

// FoodItemQueryService lists aggregated food item ratings.
type FoodItemQueryService interface {
	List(ctx context.Context, station string, bypassCache bool) ([]domain.FoodItem, error)
}

// StationService describes station use-cases.
type StationService interface {
	List(ctx context.Context) ([]domain.Station, error)
	Create(ctx context.Context, name string) (*domain.Station, error)
}

// FailedReviewQueryService exposes dead-lettered batches to admins.
type FailedReviewQueryService interface {
	List(ctx context.Context, paging Paging) ([]domain.FailedReview, error)
}

// ImageUploadService validates and hosts review photos.
type ImageUploadService interface {
	Upload(ctx context.Context, in ImageUpload) (*UploadedImage, error)
	MaxBytes() int
}

// SubmitReviewCommand captures an anonymous or signed-in submission.
type SubmitReviewCommand struct {
	FoodItem string
	Station  string
	Rating   int
	Comment  string
	Reviewer string
	ImageURL string
}
