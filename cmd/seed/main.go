package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/config"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
	mongodoc "github.com/campuseats/dining-reviews/api/internal/infrastructure/mongo"
	"github.com/campuseats/dining-reviews/api/internal/logging"
)

var defaultStations = []string{"Bakery", "Deli", "Grill", "Noodle Bar", "Pizza", "Salad Bar"}

var menu = map[string][]string{
	"Bakery":     {"Blueberry Muffin", "Croissant", "Cinnamon Roll"},
	"Deli":       {"Turkey Club", "Tomato Soup", "Italian Sub"},
	"Grill":      {"Cheeseburger", "Veggie Burger", "Chicken Tenders", "Fries"},
	"Noodle Bar": {"Pho", "Pad Thai", "Ramen"},
	"Pizza":      {"Margherita", "Pepperoni", "BBQ Chicken"},
	"Salad Bar":  {"Caesar Salad", "Greek Salad", "Grain Bowl"},
}

var comments = []string{
	"",
	"Would get again.",
	"A little cold by the time I sat down.",
	"Portion was generous.",
	"Too salty for me.",
	"Best thing on the menu today.",
}

var reviewers = []string{"", "", "Alex", "Sam", "Jordan", "Riley", "Morgan"}

type seedOptions struct {
	envName    string
	stations   []string
	reviews    int
	drop       bool
	randomSeed int64
}

func main() {
	opts := parseFlags()

	if err := config.LoadDotEnv(envFiles(opts.envName)...); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env files: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(envOrDefault("APP_ENV", "development"), envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, opts); err != nil {
		logger.Fatalw("seed failed", "error", err)
	}
}

func run(logger *zap.SugaredLogger, opts seedOptions) error {
	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "dining")
	reviewCollection := envOrDefault("REVIEW_COLLECTION", "reviews")
	stationCollection := envOrDefault("STATION_COLLECTION", "stations")
	failedCollection := envOrDefault("FAILED_REVIEW_COLLECTION", "failed_reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.drop {
		for _, name := range []string{reviewCollection, stationCollection, failedCollection} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				return fmt.Errorf("drop %s: %w", name, err)
			}
		}
		logger.Infow("dropped existing collections")
	}

	stations := mongodoc.NewStationRepository(db, stationCollection)
	reviews := mongodoc.NewReviewRepository(db, reviewCollection)
	failed := mongodoc.NewFailedReviewRepository(db, failedCollection)

	if err := stations.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := reviews.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := failed.EnsureIndexes(ctx); err != nil {
		return err
	}

	now := time.Now()
	added, err := stations.Seed(ctx, opts.stations, now)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	demo, err := generateReviews(rng, opts.stations, opts.reviews, now)
	if err != nil {
		return err
	}
	if len(demo) > 0 {
		if err := reviews.InsertMany(ctx, demo); err != nil {
			return err
		}
	}

	logger.Infow("seed complete",
		"stationsAdded", added,
		"stations", len(opts.stations),
		"reviews", len(demo),
		"database", dbName,
		"env", opts.envName,
	)
	return nil
}

func parseFlags() seedOptions {
	var opts seedOptions
	var stationList string
	flag.StringVar(&opts.envName, "env", "local", "env file name under env/ (e.g. local, staging)")
	flag.StringVar(&stationList, "stations", strings.Join(defaultStations, ","), "comma separated station names")
	flag.IntVar(&opts.reviews, "reviews", 0, "number of demo reviews to generate")
	flag.BoolVar(&opts.drop, "drop", false, "drop review, station and failed review collections first")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed for reproducible demo data")
	flag.Parse()

	opts.stations = splitList(stationList)
	if len(opts.stations) == 0 {
		opts.stations = defaultStations
	}
	if opts.reviews < 0 {
		opts.reviews = 0
	}
	return opts
}

func envFiles(envName string) []string {
	paths := []string{".env"}
	if envName = strings.TrimSpace(envName); envName != "" {
		paths = append(paths, filepath.Join("env", envName+".env"))
	}
	return paths
}

// generateReviews spreads count reviews over the given stations within the last 30 days.
func generateReviews(rng *rand.Rand, stations []string, count int, now time.Time) ([]*domain.Review, error) {
	if count <= 0 || len(stations) == 0 {
		return nil, nil
	}

	out := make([]*domain.Review, 0, count)
	for i := 0; i < count; i++ {
		station := stations[rng.Intn(len(stations))]
		dishes := menu[station]
		if len(dishes) == 0 {
			dishes = []string{station + " Special"}
		}

		createdAt := now.Add(-time.Duration(rng.Int63n(int64(30 * 24 * time.Hour))))
		review, err := domain.NewReview(domain.ReviewInput{
			FoodItem: dishes[rng.Intn(len(dishes))],
			Station:  station,
			Rating:   domain.MinRating + rng.Intn(domain.MaxRating-domain.MinRating+1),
			Comment:  comments[rng.Intn(len(comments))],
			Reviewer: reviewers[rng.Intn(len(reviewers))],
		}, createdAt)
		if err != nil {
			return nil, fmt.Errorf("generate review %d: %w", i, err)
		}
		out = append(out, review)
	}
	return out, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
