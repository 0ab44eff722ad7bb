package application

import (
	"context"
	"fmt"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// NewReviewCommandService wires the write path.
func NewReviewCommandService(repo ReviewRepository, writer ReviewWriter) ReviewCommandService {
	return &reviewCommandService{repo: repo, writer: writer, now: time.Now}
}

type reviewCommandService struct {
	repo   ReviewRepository
	writer ReviewWriter
	now    func() time.Time
}

func (s *reviewCommandService) Submit(ctx context.Context, cmd SubmitReviewCommand) (*domain.Review, error) {
	review, err := domain.NewReview(domain.ReviewInput{
		FoodItem: cmd.FoodItem,
		Station:  cmd.Station,
		Rating:   cmd.Rating,
		Comment:  cmd.Comment,
		Reviewer: cmd.Reviewer,
		ImageURL: cmd.ImageURL,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.writer.Write(ctx, review); err != nil {
		return nil, fmt.Errorf("write review: %w", err)
	}
	return review, nil
}

func (s *reviewCommandService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id, s.now().UTC())
}

func (s *reviewCommandService) Clear(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

// NewReviewQueryService creates a new ReviewQueryService.
func NewReviewQueryService(repo ReviewRepository) ReviewQueryService {
	return &reviewQueryService{repo: repo}
}

type reviewQueryService struct {
	repo ReviewRepository
}

func (s *reviewQueryService) List(ctx context.Context, filter ReviewFilter, paging Paging) ([]domain.Review, int64, error) {
	return s.repo.Find(ctx, filter, paging)
}

func (s *reviewQueryService) Detail(ctx context.Context, id string) (*domain.Review, error) {
	return s.repo.FindByID(ctx, id)
}
