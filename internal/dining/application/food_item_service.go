package application

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

const (
	DefaultFoodItemCacheTTL   = 30 * time.Second
	DefaultFoodItemCacheSweep = time.Minute
)

// FoodItemCacheConfig controls how long aggregated listings are served from memory.
type FoodItemCacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// foodItemQueryService caches aggregates per station filter. Writes never
// invalidate it, so a listing is at most TTL stale.
type foodItemQueryService struct {
	repo     FoodItemRepository
	cache    *cache.Cache
	recorder CacheRecorder
}

// NewFoodItemQueryService creates a cached FoodItemQueryService. recorder may be nil.
func NewFoodItemQueryService(repo FoodItemRepository, cfg FoodItemCacheConfig, recorder CacheRecorder) FoodItemQueryService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultFoodItemCacheTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultFoodItemCacheSweep
	}
	return &foodItemQueryService{
		repo:     repo,
		cache:    cache.New(cfg.TTL, cfg.SweepInterval),
		recorder: recorder,
	}
}

func (s *foodItemQueryService) List(ctx context.Context, station string, bypassCache bool) ([]domain.FoodItem, error) {
	station = strings.TrimSpace(station)
	key := foodItemCacheKey(station)

	if !bypassCache {
		if cached, found := s.cache.Get(key); found {
			if items, ok := cached.([]domain.FoodItem); ok {
				s.observe("hit")
				return cloneFoodItems(items), nil
			}
		}
		s.observe("miss")
	} else {
		s.observe("bypass")
	}

	groups, err := s.repo.Summaries(ctx, station)
	if err != nil {
		return nil, err
	}
	items := domain.SummarizeFoodItems(groups)
	s.cache.Set(key, items, cache.DefaultExpiration)
	return cloneFoodItems(items), nil
}

func (s *foodItemQueryService) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveCache(result)
	}
}

func foodItemCacheKey(station string) string {
	if station == "" {
		return "food-items:*"
	}
	return "food-items:" + station
}

func cloneFoodItems(items []domain.FoodItem) []domain.FoodItem {
	return append([]domain.FoodItem(nil), items...)
}
