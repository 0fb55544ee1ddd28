package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/ltxbench/internal/config"
	"github.com/locvowork/ltxbench/internal/database"
	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/handler"
	"github.com/locvowork/ltxbench/internal/logger"
	"github.com/locvowork/ltxbench/internal/repository"
	"github.com/locvowork/ltxbench/internal/service"
	"github.com/locvowork/ltxbench/pkg/evalworkbook"
)

type App struct {
	Echo            *echo.Echo
	DB              *sql.DB
	DataStoreClient *database.DatastoreClient
	SearchClient    *database.ElasticSearchClient
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// Initialize loads configuration, opens the backends and registers the HTTP surface.
// Elasticsearch and Datastore are optional; they are skipped when not configured.
func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	env := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(env.LOG_FILE_PATH, env.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Host:            env.DB_HOST,
		Port:            env.DB_PORT,
		User:            env.DB_USER,
		Password:        env.DB_PASSWORD,
		DBName:          env.DB_NAME,
		SSLMode:         env.DB_SSL_MODE,
		MaxOpenConns:    env.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    env.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: env.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	if env.ELASTIC_URL != "" {
		es, err := database.NewElasticSearchClient(env.ELASTIC_URL)
		if err != nil {
			return err
		}
		if err := es.EnsureIndex(ctx); err != nil {
			return err
		}
		a.SearchClient = es
	}

	if env.DATASTORE_PROJECT_ID != "" {
		dc, err := database.NewDatastoreClient(ctx, env.DATASTORE_PROJECT_ID)
		if err != nil {
			return err
		}
		a.DataStoreClient = dc
	}

	// Initialize dependencies
	readmeRepo := repository.NewReadmeRepository(db)
	metricRepo := repository.NewMetricRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	var searcher domain.MetricSearcher
	if a.SearchClient != nil {
		searcher = a.SearchClient
	}
	var auditor domain.GenerationAuditor
	if a.DataStoreClient != nil {
		auditor = a.DataStoreClient
	}

	builderOpts := []evalworkbook.Option{evalworkbook.WithEvaluationRows(env.EVALUATION_ROWS)}
	if env.PROTECT_FORMULA_HELPER {
		builderOpts = append(builderOpts, evalworkbook.WithHelperProtection(env.HELPER_PASSWORD))
	}

	librarySvc := service.NewLibraryService(readmeRepo, metricRepo, projectRepo, searcher)
	templateSvc := service.NewTemplateService(readmeRepo, metricRepo, projectRepo, auditor,
		evalworkbook.NewBuilder(builderOpts...),
		service.TemplateOptions{
			DefaultWeight: env.DEFAULT_METRIC_WEIGHT,
			BatchWorkers:  env.BATCH_WORKERS,
		})

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(handler.NewLibraryHandler(librarySvc), handler.NewTemplateHandler(templateSvc))

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(libHandler *handler.LibraryHandler, tplHandler *handler.TemplateHandler) {
	library := a.Echo.Group("/library")
	library.GET("/readmes", libHandler.ListReadmesHandler)
	library.POST("/readmes", libHandler.CreateReadmeHandler)
	library.GET("/readmes/:id", libHandler.GetReadmeHandler)
	library.PUT("/readmes/:id", libHandler.UpdateReadmeHandler)
	library.DELETE("/readmes/:id", libHandler.DeleteReadmeHandler)
	library.GET("/metrics", libHandler.ListMetricsHandler)
	library.POST("/metrics", libHandler.CreateMetricHandler)

	a.Echo.GET("/organizations", libHandler.ListOrganizationsHandler)
	a.Echo.POST("/organizations", libHandler.CreateOrganizationHandler)
	a.Echo.GET("/organizations/:id/projects", libHandler.ListProjectsHandler)
	a.Echo.POST("/projects", libHandler.CreateProjectHandler)

	templates := a.Echo.Group("/templates")
	templates.POST("/generate", tplHandler.GenerateHandler)
	templates.POST("/batch", tplHandler.BatchHandler)
}

// Close releases the backends opened by Initialize.
func (a *App) Close() {
	if a.DataStoreClient != nil {
		a.DataStoreClient.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
