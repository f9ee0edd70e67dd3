package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/growindia/jobs/internal/config"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/recruitment/application/applicationapi"
	"github.com/growindia/jobs/recruitment/company/companyapi"
	"github.com/growindia/jobs/recruitment/job/jobapi"
)

func main() {
	defer logx.Sync()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	logx.SetLevel(logx.ParseLevel(cfg.LogLevel))
	logx.Info("Starting GrowIndia Jobs API Server...")

	// 2. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if container.FacetRefresher != nil {
		if err := container.FacetRefresher.Start(ctx); err != nil {
			logx.Warnf("Facet refresher disabled: %v", err)
			container.FacetRefresher = nil
		}
	}

	// 3. Create Fiber App with Config
	// Immutable: params, queries and headers outlive the request in stored
	// rows, session tokens and search keys
	app := fiber.New(fiber.Config{
		AppName:               "GrowIndia Jobs API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		Immutable:             true,
	})

	// 4. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + jobapi.HeaderSearchKey,
		AllowMethods: "GET, POST, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 5. Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{
			"status": "ok",
			"store":  container.Ping(pingCtx),
		}
		if container.Redis != nil {
			status["redis"] = container.Redis.Ping(pingCtx).Err() == nil
		}
		return c.JSON(status)
	})

	// 6. Register Routes

	// Current session: /api/me
	app.Get("/api/me",
		container.AuthMiddleware.Authenticate(),
		container.AuthMiddleware.RequireAuth(),
		func(c *fiber.Ctx) error {
			session, _ := auth.GetSession(c)
			return c.JSON(fiber.Map{
				"user_id":  session.UserID,
				"email":    session.Email,
				"role":     session.Role,
				"is_admin": container.AdminChecker.IsAdminSession(c.UserContext(), session),
			})
		},
	)

	// Applications: /api/jobs/:id/apply, /api/employer/applications
	// Registered before the job group so the apply route stays public.
	applicationapi.RegisterRoutes(app, container.ApplicationHandlers, container.AuthMiddleware)

	// Jobs: /api/jobs, /api/employer/jobs
	jobapi.RegisterRoutes(app, container.JobHandlers, container.AuthMiddleware)

	// Companies: /api/companies
	companyapi.RegisterRoutes(app, container.CompanyHandlers, container.AuthMiddleware)

	// 7. Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logx.Info("Shutting down server...")
	cancel()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// If it's a Fiber error (e.g., 404 handler not found)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  fe.Code,
		})
	}

	// If it's our custom errx.Error
	if e, ok := errx.As(err); ok {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.With("code", e.Code, "path", c.Path()).Errorw("request failed", "error", err)
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
