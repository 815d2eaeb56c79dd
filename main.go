package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/moodreel/moodreel/handlers"
	"github.com/moodreel/moodreel/lib/anilist"
	"github.com/moodreel/moodreel/lib/db"
	"github.com/moodreel/moodreel/lib/health"
	"github.com/moodreel/moodreel/lib/moods"
	"github.com/moodreel/moodreel/lib/recommend"
	"github.com/moodreel/moodreel/lib/scene"
	"github.com/moodreel/moodreel/lib/tmdb"
	"github.com/moodreel/moodreel/lib/trace"
	"github.com/moodreel/moodreel/lib/watchlist"
)

type App struct {
	db     *gorm.DB
	router *chi.Mux
	logger *slog.Logger
}

func NewApp() (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "moodreel.db"
	}

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: db.NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(gormDB, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	metadata := tmdb.NewClient(os.Getenv("TMDB_API_KEY"), logger)
	anilistClient := anilist.NewClient(logger)
	traceClient := trace.NewClient(logger)

	deepseekCfg := openai.DefaultConfig(os.Getenv("DEEPSEEK_API_KEY"))
	deepseekCfg.BaseURL = "https://api.deepseek.com/v1"
	chat := openai.NewClientWithConfig(deepseekCfg)

	ctx := context.Background()
	gemini, err := genai.NewClient(ctx, os.Getenv("GCP_PROJECT"), "us-central1",
		option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	store := watchlist.NewStore(gormDB, logger)
	recommender := recommend.New(metadata, logger)
	browser := moods.NewBrowser(metadata, anilistClient, logger)
	identifier := scene.NewIdentifier(traceClient, anilistClient, gemini, chat, logger)

	providers := map[string]bool{
		"metadata":  os.Getenv("TMDB_API_KEY") != "",
		"inference": os.Getenv("DEEPSEEK_API_KEY") != "",
		"vision":    os.Getenv("GEMINI_API_KEY") != "",
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", health.Check(gormDB, providers))
	router.Route("/api", func(r chi.Router) {
		r.Get("/recommendations", handlers.HandleRecommendations(store, recommender))
		r.Get("/search", handlers.HandleSearch(metadata, anilistClient))
		r.Get("/moods", handlers.HandleMoods())
		r.Get("/moods/{mood}", handlers.HandleMoodBrowse(browser))
		r.Get("/watchlist", handlers.HandleWatchlist(store))
		r.Post("/watchlist", handlers.HandleWatchlistAdd(store))
		r.Delete("/watchlist/{id}", handlers.HandleWatchlistRemove(store))
		r.Post("/identify", handlers.HandleIdentify(identifier))
	})

	return &App{db: gormDB, router: router, logger: logger}, nil
}

func main() {
	app, err := NewApp()
	if err != nil {
		slog.Error("Failed to start", slog.Any("error", err))
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	app.logger.Info("starting server", slog.String("port", port))
	if err := http.ListenAndServe(":"+port, app.router); err != nil {
		app.logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
