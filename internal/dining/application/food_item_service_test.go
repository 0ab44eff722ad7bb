package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodItemAverageIgnoresDeletedReviews(t *testing.T) {
	store := newMemReviewStore()
	commands := NewReviewCommandService(store, store)
	foodItems := NewFoodItemQueryService(store, FoodItemCacheConfig{}, nil)
	ctx := context.Background()

	for _, rating := range []int{5, 4, 3} {
		_, err := commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Burger", Station: "Grill", Rating: rating})
		require.NoError(t, err)
	}
	outlier, err := commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Burger", Station: "Grill", Rating: 1})
	require.NoError(t, err)
	require.NoError(t, commands.Delete(ctx, outlier.ID))

	items, err := foodItems.List(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].ReviewCount)
	assert.InDelta(t, 4.0, items[0].AverageRating, 1e-9)
}

func TestFoodItemCacheServesStaleDataUntilExpiry(t *testing.T) {
	store := newMemReviewStore()
	commands := NewReviewCommandService(store, store)
	recorder := &countingRecorder{}
	ttl := 80 * time.Millisecond
	foodItems := NewFoodItemQueryService(store, FoodItemCacheConfig{TTL: ttl, SweepInterval: time.Hour}, recorder)
	ctx := context.Background()

	_, err := commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Salad", Station: "Salad Bar", Rating: 4})
	require.NoError(t, err)

	first, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)

	_, err = commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Salad", Station: "Salad Bar", Rating: 2})
	require.NoError(t, err)

	second, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, first, second, "reads within the TTL must be identical")
	assert.Equal(t, 1, store.calls())

	time.Sleep(ttl + 40*time.Millisecond)

	third, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, 2, third[0].ReviewCount)
	assert.InDelta(t, 3.0, third[0].AverageRating, 1e-9)
	assert.Equal(t, 2, store.calls())

	assert.Equal(t, 1, recorder.results["hit"])
	assert.Equal(t, 2, recorder.results["miss"])
}

func TestFoodItemCacheBypassAndStationKeys(t *testing.T) {
	store := newMemReviewStore()
	commands := NewReviewCommandService(store, store)
	foodItems := NewFoodItemQueryService(store, FoodItemCacheConfig{TTL: time.Hour}, nil)
	ctx := context.Background()

	_, err := commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Pizza", Station: "Pizza", Rating: 5})
	require.NoError(t, err)
	_, err = commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Wrap", Station: "Deli", Rating: 3})
	require.NoError(t, err)

	all, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deli, err := foodItems.List(ctx, " Deli ", false)
	require.NoError(t, err)
	require.Len(t, deli, 1)
	assert.Equal(t, "Wrap", deli[0].Name)

	_, err = commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Soup", Station: "Deli", Rating: 4})
	require.NoError(t, err)

	cached, err := foodItems.List(ctx, "Deli", false)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	fresh, err := foodItems.List(ctx, "Deli", true)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)

	// the bypass read refreshed the cached entry
	again, err := foodItems.List(ctx, "Deli", false)
	require.NoError(t, err)
	assert.Equal(t, fresh, again)
}

func TestFoodItemListReturnsCopies(t *testing.T) {
	store := newMemReviewStore()
	commands := NewReviewCommandService(store, store)
	foodItems := NewFoodItemQueryService(store, FoodItemCacheConfig{TTL: time.Hour}, nil)
	ctx := context.Background()

	_, err := commands.Submit(ctx, SubmitReviewCommand{FoodItem: "Pizza", Station: "Pizza", Rating: 5})
	require.NoError(t, err)

	items, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)
	items[0].Name = "mutated"

	again, err := foodItems.List(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", again[0].Name)
}
