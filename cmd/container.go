package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/growindia/jobs/internal/config"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/pkg/tablex/tablexpg"
	"github.com/growindia/jobs/pkg/tablex/tablexrest"
	"github.com/growindia/jobs/recruitment/application/applicationapi"
	"github.com/growindia/jobs/recruitment/application/applicationinfra"
	"github.com/growindia/jobs/recruitment/application/applicationsrv"
	"github.com/growindia/jobs/recruitment/company/companyapi"
	"github.com/growindia/jobs/recruitment/company/companyinfra"
	"github.com/growindia/jobs/recruitment/company/companysrv"
	"github.com/growindia/jobs/recruitment/job"
	"github.com/growindia/jobs/recruitment/job/jobapi"
	"github.com/growindia/jobs/recruitment/job/jobinfra"
	"github.com/growindia/jobs/recruitment/job/jobsrv"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB // nil on the rest backend
	Redis *redis.Client
	Store tablex.Client

	// Services
	JobService         *jobsrv.JobService
	CompanyService     *companysrv.CompanyService
	ApplicationService *applicationsrv.ApplicationService
	AdminChecker       *auth.AdminChecker
	FacetRefresher     *jobsrv.FacetRefresher

	// API Handlers
	JobHandlers         *jobapi.Handlers
	CompanyHandlers     *companyapi.Handlers
	ApplicationHandlers *applicationapi.Handlers

	// Middleware
	AuthMiddleware *auth.Middleware
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	cfg := c.Config

	// 1. Table store
	switch cfg.StoreBackend {
	case config.BackendRest:
		c.Store = tablexrest.New(tablexrest.Config{
			BaseURL: cfg.StoreURL,
			AnonKey: cfg.StoreAnonKey,
			Timeout: cfg.QueryTimeout,
		})
		logx.Infof("Using REST table store at %s", cfg.StoreURL)
	default:
		db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		c.DB = db
		c.Store = tablexpg.New(db)
		logx.Infof("Using postgres table store at %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	}

	// 2. Redis, optional
	if cfg.RedisAddr == "" {
		logx.Warn("REDIS_ADDR is not set, facets will be computed per request")
		return
	}
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}
}

func (c *Container) initServices() {
	cfg := c.Config

	// --- Repositories ---
	jobRepo := jobinfra.NewTableJobRepository(c.Store)
	companyRepo := companyinfra.NewTableCompanyRepository(c.Store)
	applicationRepo := applicationinfra.NewTableApplicationRepository(c.Store)

	var facetCache job.FacetCache
	if c.Redis != nil {
		facetCache = jobinfra.NewRedisFacetCache(c.Redis, cfg.FacetCacheTTL)
	}

	// --- Domain Services ---
	c.JobService = jobsrv.NewJobService(jobRepo, facetCache, jobsrv.Config{
		QueryTimeout:    cfg.QueryTimeout,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		FacetSampleSize: cfg.FacetSampleSize,
	})
	c.CompanyService = companysrv.NewCompanyService(companyRepo, cfg.QueryTimeout)
	c.ApplicationService = applicationsrv.NewApplicationService(applicationRepo, jobRepo, applicationsrv.Config{
		QueryTimeout:    cfg.QueryTimeout,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	c.AdminChecker = auth.NewAdminChecker(c.Store)

	if facetCache != nil && cfg.FacetRefreshSpec != "" {
		c.FacetRefresher = jobsrv.NewFacetRefresher(c.JobService, cfg.FacetRefreshSpec)
	}

	// --- Middleware ---
	// The rest backend evaluates row-level policies as the caller
	var forward auth.TokenForwarder
	if cfg.StoreBackend == config.BackendRest {
		forward = tablexrest.WithAccessToken
	}
	c.AuthMiddleware = auth.NewMiddleware(auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience), forward)

	// --- Handlers ---
	c.JobHandlers = jobapi.NewHandlers(c.JobService, c.CompanyService, c.AdminChecker)
	c.CompanyHandlers = companyapi.NewHandlers(c.CompanyService)
	c.ApplicationHandlers = applicationapi.NewHandlers(c.ApplicationService, c.JobService, c.CompanyService, c.AdminChecker)
}

// Ping reports whether the table store answers a trivial query
func (c *Container) Ping(ctx context.Context) bool {
	if c.DB != nil {
		return c.DB.PingContext(ctx) == nil
	}
	_, err := c.Store.Select(ctx, tablex.Query{Table: "jobs", Columns: []string{"id"}, Limit: 1})
	return err == nil
}

// Close releases the connections held by the container
func (c *Container) Close() {
	if c.FacetRefresher != nil {
		c.FacetRefresher.Stop()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Warnf("Failed to close Redis: %v", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Warnf("Failed to close database: %v", err)
		}
	}
}
