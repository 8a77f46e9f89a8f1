package main

import (
	"alcyxob/fitness-tracker/internal/api"
	"alcyxob/fitness-tracker/internal/catalog"
	"alcyxob/fitness-tracker/internal/config"
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository"
	"alcyxob/fitness-tracker/internal/repository/memstore"
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"alcyxob/fitness-tracker/internal/service"
	"alcyxob/fitness-tracker/internal/stats"
	"alcyxob/fitness-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// repositories is the set of stores the services are built on.
type repositories struct {
	tx          repository.Transactor
	users       repository.UserRepository
	exercises   repository.ExerciseRepository
	plans       repository.GeneratedPlanRepository
	workouts    repository.WorkoutRepository
	links       repository.WorkoutExerciseRepository
	completions repository.CompletionRepository
	probe       repository.CompletionSchemaProbe
	close       func()
}

// @title Fitness Tracker API
// @version 1.0
// @description Turns AI-generated training plans into workouts and records their completions.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting fitness tracker server", "driver", cfg.Database.Driver, "address", cfg.Server.Address)

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured", "env", "JWT_SECRET")
	}

	repos, err := openRepositories(cfg.Database, log)
	if err != nil {
		log.Fatal("Could not open the data store", "error", err)
	}
	defer repos.close()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage = storage.Disabled{}
	if cfg.S3.Endpoint != "" || cfg.S3.AccessKeyID != "" {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fileStorage, err = storage.NewS3Storage(initCtx, cfg.S3, log)
		cancel()
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", "error", err)
		}
	} else {
		log.Warn("Object storage not configured, exports are disabled")
	}

	calendar, err := stats.NewCalendar(cfg.Stats.Timezone, cfg.Stats.WeekStart)
	if err != nil {
		log.Fatal("Invalid stats calendar", "error", err)
	}

	exerciseService := service.NewExerciseService(repos.exercises, cfg.Catalog.Limit, log)
	if err := seedCatalog(exerciseService, cfg, log); err != nil {
		log.Fatal("Could not seed the exercise catalog", "error", err)
	}

	// --- Initialize Services ---
	services := api.Services{
		Auth:      service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration, log),
		Exercises: exerciseService,
		Plans: service.NewPlanService(repos.plans, service.PlanDefaults{
			Sets: cfg.Materializer.DefaultSets,
			Reps: cfg.Materializer.DefaultReps,
		}, log),
		Materializer: service.NewMaterializerService(repos.tx, repos.plans, repos.workouts, repos.links, repos.exercises,
			service.MaterializerOptions{
				DefaultSets:        cfg.Materializer.DefaultSets,
				DefaultRestSeconds: cfg.Materializer.DefaultRestSeconds,
			}, log),
		Completions: service.NewCompletionService(repos.plans, repos.completions, repos.probe,
			service.CompletionOptions{
				ColumnsMode:  cfg.Completions.ColumnsMode,
				ProbeTTL:     cfg.Completions.ProbeTTL,
				HistoryLimit: cfg.Completions.HistoryLimit,
			}, log),
		Stats:   service.NewStatsService(repos.completions, calendar),
		Exports: service.NewExportService(repos.tx, repos.plans, repos.workouts, repos.links, repos.completions, fileStorage, cfg.Export.URLExpiry, log),
	}

	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))
	api.SetupRoutes(router, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	// In-flight requests get 5 seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	log.Info("Server exiting")
}

func openRepositories(cfg config.DatabaseConfig, log *logger.Logger) (*repositories, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("Using the in-memory store, data is lost on restart")
		store := memstore.New()
		return &repositories{
			tx:          store,
			users:       store.Users(),
			exercises:   store.Exercises(),
			plans:       store.Plans(),
			workouts:    store.Workouts(),
			links:       store.WorkoutExercises(),
			completions: store.Completions(),
			probe:       store.SchemaProbe(),
			close:       func() {},
		}, nil
	case "mongo", "":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info("Database connection established", "database", cfg.Name)

		return &repositories{
			tx:          mongo.NewTransactor(client),
			users:       mongo.NewMongoUserRepository(db),
			exercises:   mongo.NewMongoExerciseRepository(db),
			plans:       mongo.NewMongoGeneratedPlanRepository(db),
			workouts:    mongo.NewMongoWorkoutRepository(db),
			links:       mongo.NewMongoWorkoutExerciseRepository(db),
			completions: mongo.NewMongoCompletionRepository(db),
			probe:       mongo.NewCompletionSchemaProbe(db),
			close: func() {
				if err := mongo.DisconnectDB(client); err != nil {
					log.Error("Failed to disconnect MongoDB", "error", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// seedCatalog loads the configured catalog file. The memory store starts
// empty, so it gets the bundled catalog when no file is configured.
func seedCatalog(exercises service.ExerciseService, cfg config.Config, log *logger.Logger) error {
	var entries []domain.Exercise
	switch {
	case cfg.Catalog.SeedFile != "":
		loaded, err := catalog.LoadFile(cfg.Catalog.SeedFile)
		if err != nil {
			return err
		}
		entries = loaded
	case cfg.Database.Driver == "memory":
		entries = catalog.Default()
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, skipped, err := exercises.SeedCatalog(ctx, entries)
	if err != nil {
		return err
	}
	log.Info("Exercise catalog seeded", "created", created, "skipped", skipped)
	return nil
}
