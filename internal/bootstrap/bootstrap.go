package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/spmb/internal/app/controllers"
	appMigrations "github.com/yigit/spmb/internal/app/migrations"
	appRepos "github.com/yigit/spmb/internal/app/repositories"
	appRoutes "github.com/yigit/spmb/internal/app/routes"
	appServices "github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/config"
	"github.com/yigit/spmb/internal/db"
	appMiddleware "github.com/yigit/spmb/internal/middleware"
	pkgAuth "github.com/yigit/spmb/internal/pkg/auth"
	"github.com/yigit/spmb/internal/pkg/filestorage"
	"github.com/yigit/spmb/internal/pkg/logger"
	"github.com/yigit/spmb/internal/pkg/metrics"
	"github.com/yigit/spmb/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Settings            appServices.AdmissionSettings
	CandidateService    appServices.CandidateService
	PlacementService    appServices.PlacementService
	DistributionService appServices.DistributionService
	ExportService       appServices.ExportService
	Drafts              *appServices.DraftStore
	Controllers         appRoutes.Controllers
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	FileStorage         *filestorage.LocalStorage
	Metrics             metrics.Recorder
	MetricsHandler      http.Handler // nil when metrics are disabled
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("SPMB_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: "spmb",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

func newMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNop(), nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)
	return recorder, recorder.Handler()
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Settings = appServices.NewAdmissionSettings(cfg)
	deps.Metrics, deps.MetricsHandler = newMetrics(cfg)
	if err := BuildServices(cfg, deps, deps.Repos.CandidateRepository, deps.Repos.StudentRepository); err != nil {
		return nil, err
	}
	return deps, nil
}

// BuildServices wires services, controllers and auth on top of the given stores.
// deps.Settings and deps.Metrics must be set.
func BuildServices(cfg *config.Config, deps *Dependencies, candidates appServices.CandidateStore, roster appServices.RosterStore) error {
	baseURL := ""
	if cfg.Server.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.Server.BaseURL, "/") + "/" + filestorage.PublicPrefix
	}
	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to initialize file storage")
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Drafts = appServices.NewDraftStore(deps.Settings.DraftTTL)
	deps.CandidateService = appServices.NewCandidateService(candidates, deps.Settings, deps.Metrics, deps.Logger)
	deps.PlacementService = appServices.NewPlacementService(candidates, roster, deps.Settings, deps.Metrics, deps.Logger)
	deps.DistributionService = appServices.NewDistributionService(candidates, deps.PlacementService, deps.Drafts, deps.Settings, deps.Metrics, deps.Logger)
	deps.ExportService = appServices.NewExportService(candidates, deps.FileStorage, deps.Settings, deps.Logger)

	deps.Controllers = appRoutes.Controllers{
		Candidate:    appControllers.NewCandidateController(deps.CandidateService, deps.FileStorage),
		Distribution: appControllers.NewDistributionController(deps.DistributionService),
		Roster:       appControllers.NewRosterController(deps.PlacementService),
		Export:       appControllers.NewExportController(deps.ExportService),
	}
	return nil
}

// SeedData imports the configured seed CSV. Failures are logged, not fatal.
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if err := seed.ImportCandidatesFromCSV(ctx, cfg.Admission.SeedCSV, deps.CandidateService, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to seed candidates, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(deps.Metrics))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, cfg.JWT.RequiredRole)

	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Archived exports and imports
	appRoutes.SetupArchive(router, filestorage.PublicPrefix, deps.FileStorage.BasePath(), deps.AuthMiddleware, cfg.JWT.RequiredRole)
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for exports")

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
