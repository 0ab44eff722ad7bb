package domain

import (
	"sort"
	"strings"
	"time"
)

// FoodItem is the rating summary of one dish at one station. It is derived from active reviews, never stored.
type FoodItem struct {
	Name           string
	Station        string
	ReviewCount    int
	AverageRating  float64
	ImageURL       string
	LatestReviewAt time.Time
}

// FoodItemGroup is the raw aggregate for a (food item, station) pair as returned by storage.
// Images are ordered newest review first and may contain blanks.
type FoodItemGroup struct {
	Name           string
	Station        string
	ReviewCount    int
	RatingSum      int
	Images         []string
	LatestReviewAt time.Time
}

// SummarizeFoodItems turns raw groups into sorted food item summaries.
func SummarizeFoodItems(groups []FoodItemGroup) []FoodItem {
	items := make([]FoodItem, 0, len(groups))
	for _, g := range groups {
		if g.ReviewCount <= 0 {
			continue
		}
		items = append(items, FoodItem{
			Name:           g.Name,
			Station:        g.Station,
			ReviewCount:    g.ReviewCount,
			AverageRating:  float64(g.RatingSum) / float64(g.ReviewCount),
			ImageURL:       firstImage(g.Images),
			LatestReviewAt: g.LatestReviewAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Station < b.Station
	})
	return items
}

func firstImage(images []string) string {
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			return img
		}
	}
	return ""
}
