package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

// memReviewStore is an in-memory ReviewRepository, ReviewWriter and FoodItemRepository.
type memReviewStore struct {
	mu       sync.Mutex
	seq      int
	reviews  map[string]*domain.Review
	writeErr error
	aggCalls int
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{reviews: make(map[string]*domain.Review)}
}

func (m *memReviewStore) Write(_ context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.seq++
	r.ID = fmt.Sprintf("r%03d", m.seq)
	stored := *r
	m.reviews[r.ID] = &stored
	return nil
}

func (m *memReviewStore) Find(_ context.Context, filter ReviewFilter, paging Paging) ([]domain.Review, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Review, 0)
	for _, r := range m.reviews {
		if !r.IsActive {
			continue
		}
		if filter.FoodItem != "" && r.FoodItem != filter.FoodItem {
			continue
		}
		if filter.Station != "" && r.Station != filter.Station {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	start := int(paging.Skip())
	if start > len(out) {
		start = len(out)
	}
	end := len(out)
	if paging.Limit > 0 && start+paging.Limit < end {
		end = start + paging.Limit
	}
	return out[start:end], total, nil
}

func (m *memReviewStore) FindByID(_ context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memReviewStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok || !r.IsActive {
		return domain.ErrNotFound
	}
	r.IsActive = false
	r.DeletedAt = &at
	return nil
}

func (m *memReviewStore) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.reviews))
	m.reviews = make(map[string]*domain.Review)
	return n, nil
}

func (m *memReviewStore) Summaries(_ context.Context, station string) ([]domain.FoodItemGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggCalls++
	type key struct{ name, station string }
	groups := make(map[key]*domain.FoodItemGroup)
	for _, r := range m.reviews {
		if !r.IsActive || (station != "" && r.Station != station) {
			continue
		}
		k := key{r.FoodItem, r.Station}
		g, ok := groups[k]
		if !ok {
			g = &domain.FoodItemGroup{Name: r.FoodItem, Station: r.Station}
			groups[k] = g
		}
		g.ReviewCount++
		g.RatingSum += r.Rating
		g.Images = append(g.Images, r.ImageURL)
		if r.CreatedAt.After(g.LatestReviewAt) {
			g.LatestReviewAt = r.CreatedAt
		}
	}
	out := make([]domain.FoodItemGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *memReviewStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggCalls
}

type memStationStore struct {
	stations []domain.Station
}

func (m *memStationStore) Find(context.Context) ([]domain.Station, error) {
	return append([]domain.Station(nil), m.stations...), nil
}

func (m *memStationStore) Create(_ context.Context, s *domain.Station) error {
	for _, existing := range m.stations {
		if existing.Name == s.Name {
			return domain.ErrDuplicate
		}
	}
	s.ID = fmt.Sprintf("s%d", len(m.stations)+1)
	m.stations = append(m.stations, *s)
	return nil
}

type recordingUploader struct {
	publicID string
	body     []byte
	err      error
}

func (u *recordingUploader) Upload(_ context.Context, r io.Reader, publicID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.publicID = publicID
	u.body = body
	return "https://res.cloudinary.com/demo/image/upload/" + publicID, nil
}

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (c *countingRecorder) ObserveCache(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		c.results = make(map[string]int)
	}
	c.results[result]++
}
