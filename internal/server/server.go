package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/campuseats/dining-reviews/api/internal/config"
	"github.com/campuseats/dining-reviews/api/internal/dining/application"
	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
	"github.com/campuseats/dining-reviews/api/internal/infrastructure/cloudinary"
	mongodoc "github.com/campuseats/dining-reviews/api/internal/infrastructure/mongo"
	"github.com/campuseats/dining-reviews/api/internal/ingest"
	adminhttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/admin"
	commonhttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/common"
	publichttp "github.com/campuseats/dining-reviews/api/internal/interfaces/http/public"
	"github.com/campuseats/dining-reviews/api/internal/observability/metrics"
)

type healthChecker interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type pingStore interface {
	Latest(ctx context.Context) (*mongodoc.PingDocument, error)
	EnsureSample(ctx context.Context, now time.Time) error
}

// Server owns the HTTP lifecycle and is the composition root that injects
// application services into the public and admin handlers.
type Server struct {
	logger         *zap.SugaredLogger
	client         *mongo.Client
	health         healthChecker
	pings          pingStore
	writer         *ingest.Writer
	metrics        *metrics.Metrics
	public         *publichttp.Handler
	admin          *adminhttp.Handler
	jwt            config.JWTConfig
	jwtAudience    string
	allowedOrigins []string
	addr           string
}

// New builds repositories, services and handlers from cfg. m may be nil.
func New(cfg config.Config, client *mongo.Client, logger *zap.SugaredLogger, m *metrics.Metrics) *Server {
	database := client.Database(cfg.MongoDatabase)

	reviewRepo := mongodoc.NewReviewRepository(database, cfg.ReviewCollection)
	foodItemRepo := mongodoc.NewFoodItemRepository(database, cfg.ReviewCollection)
	stationRepo := mongodoc.NewStationRepository(database, cfg.StationCollection)
	failedRepo := mongodoc.NewFailedReviewRepository(database, cfg.FailedReviewCollection)

	writer := ingest.New(ingest.Config{
		Store:         reviewRepo,
		DeadLetter:    failedRepo,
		Logger:        logger.Named("ingest"),
		Recorder:      m,
		Capacity:      cfg.Ingest.Capacity,
		BatchSize:     cfg.Ingest.BatchSize,
		FlushInterval: cfg.Ingest.FlushInterval,
		FlushTimeout:  cfg.Ingest.FlushTimeout,
		WaitTimeout:   cfg.Ingest.WaitTimeout,
		DirectRate:    cfg.Ingest.DirectRate,
		DirectBurst:   cfg.Ingest.DirectBurst,
	})

	var uploader application.ImageUploader
	if cfg.CloudinaryURL != "" {
		u, err := cloudinary.NewUploader(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			logger.Warnw("image uploads disabled", "error", err)
		} else {
			uploader = u
		}
	} else {
		logger.Warnw("image uploads disabled, CLOUDINARY_URL is not set")
	}

	// a nil *Metrics must not become a non-nil interface
	var cacheRecorder application.CacheRecorder
	if m != nil {
		cacheRecorder = m
	}

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         logger.Named("public"),
		ReviewQueries:  application.NewReviewQueryService(reviewRepo),
		ReviewCommands: application.NewReviewCommandService(reviewRepo, writer),
		FoodItems: application.NewFoodItemQueryService(foodItemRepo, application.FoodItemCacheConfig{
			TTL:           cfg.FoodItemCacheTTL,
			SweepInterval: cfg.FoodItemCacheSweep,
		}, cacheRecorder),
		Stations: application.NewStationService(stationRepo),
		Images:   application.NewImageService(uploader, cfg.UploadMaxBytes),
	})
	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:         logger.Named("admin"),
		ReviewCommands: application.NewReviewCommandService(reviewRepo, writer),
		FailedReviews:  application.NewFailedReviewQueryService(failedRepo),
		AllowBulkClear: cfg.IsDevelopment(),
	})

	return &Server{
		logger:         logger,
		client:         client,
		health:         client,
		pings:          mongodoc.NewPingRepository(database, cfg.PingCollection),
		writer:         writer,
		metrics:        m,
		public:         publicHandler,
		admin:          adminHandler,
		jwt:            cfg.JWT,
		jwtAudience:    cfg.JWTAudience,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		addr:           cfg.Addr,
	}
}

// Router assembles middleware and routes.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(corsOptions(s.allowedOrigins)))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteError(s.logger, w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteError(s.logger, w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/healthz", s.healthHandler())
	router.Get("/ping", s.pingHandler())
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		s.public.Register(r, s.authMiddleware, s.optionalAuthMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		s.admin.Register(r)
	})
	return router
}

// Run starts the flusher and the HTTP server, then blocks until ctx ends, a
// signal arrives or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.ensureSamplePing(ctx); err != nil {
		s.logger.Warnw("failed to prepare sample ping document", "error", err)
	}

	s.writer.Start()

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "addr", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	runErr := waitForShutdown(ctx, httpServer, errChan, s.logger)
	s.shutdown()
	return runErr
}

func corsOptions(origins []string) cors.Options {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// healthHandler reports infrastructure state only.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Ping(ctx, readpref.Primary()); err != nil {
			s.logger.Warnw("health check failed", "error", err)
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"error":  "database unreachable",
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]any{
			"status":      "ok",
			"time":        time.Now().UTC().Format(time.RFC3339),
			"bufferDepth": s.writer.Depth(),
		})
	}
}

// pingHandler returns the newest document of the ping collection.
func (s *Server) pingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		doc, err := s.pings.Latest(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			commonhttp.WriteError(s.logger, w, http.StatusNotFound, "ping collection is empty")
			return
		}
		if err != nil {
			s.logger.Errorw("failed to read ping document", "error", err)
			commonhttp.WriteError(s.logger, w, http.StatusInternalServerError, "failed to read ping document")
			return
		}

		commonhttp.WriteData(s.logger, w, http.StatusOK, map[string]any{
			"id":        doc.ID.Hex(),
			"message":   doc.Message,
			"createdAt": doc.CreatedAt.UTC(),
		})
	}
}

func (s *Server) ensureSamplePing(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pings.EnsureSample(ctx, time.Now())
}

// shutdown drains the write buffer before the Mongo client goes away.
func (s *Server) shutdown() {
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.writer.Close(closeCtx); err != nil {
		s.logger.Errorw("review buffer did not drain before shutdown", "pending", s.writer.Depth(), "error", err)
	}

	if s.client == nil {
		return
	}
	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDisconnect()
	if err := s.client.Disconnect(disconnectCtx); err != nil {
		s.logger.Errorw("failed to disconnect from MongoDB", "error", err)
	}
}

func waitForShutdown(ctx context.Context, httpServer *http.Server, errChan <-chan error, logger *zap.SugaredLogger) error {
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Infow("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("HTTP server shutdown failed", "error", err)
		}
		return nil
	}
}
