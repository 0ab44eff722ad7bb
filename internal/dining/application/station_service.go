package application

import (
	"context"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

type stationService struct {
	repo StationRepository
	now  func() time.Time
}

// NewStationService creates a new StationService.
func NewStationService(repo StationRepository) StationService {
	return &stationService{repo: repo, now: time.Now}
}

func (s *stationService) List(ctx context.Context) ([]domain.Station, error) {
	return s.repo.Find(ctx)
}

func (s *stationService) Create(ctx context.Context, name string) (*domain.Station, error) {
	station, err := domain.NewStation(name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}

type failedReviewQueryService struct {
	repo FailedReviewRepository
}

// NewFailedReviewQueryService creates a new FailedReviewQueryService.
func NewFailedReviewQueryService(repo FailedReviewRepository) FailedReviewQueryService {
	return &failedReviewQueryService{repo: repo}
}

func (s *failedReviewQueryService) List(ctx context.Context, paging Paging) ([]domain.FailedReview, error) {
	return s.repo.List(ctx, paging)
}
