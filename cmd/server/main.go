package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"restoran-bilanco/internal/admin"
	"restoran-bilanco/internal/audit"
	"restoran-bilanco/internal/auth"
	"restoran-bilanco/internal/cashflow"
	"restoran-bilanco/internal/comparison"
	"restoran-bilanco/internal/config"
	"restoran-bilanco/internal/dashboard"
	"restoran-bilanco/internal/database"
	"restoran-bilanco/internal/expense"
	"restoran-bilanco/internal/logger"
	"restoran-bilanco/internal/models"
	"restoran-bilanco/internal/reporting"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "restoran-bilanco",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := context.Background()
	for _, w := range cfg.Warnings() {
		log.Warn(ctx, w, nil)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Error(ctx, "config.timezone", err)
		os.Exit(1)
	}

	if err := database.Init(cfg, log); err != nil {
		log.Error(ctx, "database.init_failed", err)
		os.Exit(1)
	}

	rdb, err := newRedis(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "redis.init_failed", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := reporting.NewMetrics(reg)
	cache := reporting.NewCache(rdb, cfg.SnapshotCacheTTL)
	builder := reporting.NewSnapshotBuilder(cache, metrics, log)
	compare := reporting.NewService(builder, comparison.NewEngine(log), metrics, loc, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	app.Use(logger.Middleware(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + logger.RequestIDHeader,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, " + logger.RequestIDHeader,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg.JWTSecret, cfg.JWTTTL))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler(log))
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler(log))
	adminRoutes.Post("/branches/:id/admin", admin.CreateBranchAdminHandler())
	adminRoutes.Get("/branches/:id/admins", admin.ListBranchAdminsHandler())

	// Gider kategorileri
	adminRoutes.Post("/expense-categories", expense.CreateExpenseCategoryHandler(log))
	adminRoutes.Put("/expense-categories/:id", expense.UpdateExpenseCategoryHandler(cache, log))
	adminRoutes.Delete("/expense-categories/:id", expense.DeleteExpenseCategoryHandler(log))

	// Ciro girişleri
	protected.Post("/cash-movements", cashflow.CreateCashMovementHandler(cache, loc, log))
	protected.Get("/cash-movements", cashflow.ListCashMovementsHandler(loc))

	// Giderler
	protected.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler(cache, loc, log))
	protected.Get("/expenses", expense.ListExpensesHandler(loc))

	// Dashboard
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler(loc))

	// Bilanço karşılaştırma
	protected.Get("/financial-summary/compare/modes", reporting.ModesHandler())
	protected.Get("/financial-summary/compare/export", reporting.ExportHandler(compare))
	protected.Get("/financial-summary/compare", reporting.CompareHandler(compare))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info(log.WithField(ctx, "port", cfg.HTTPPort), "server.listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Error(ctx, "server.listen_failed", err)
			stop()
		}
	}()

	<-sigCtx.Done()
	log.Info(ctx, "server.shutting_down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error(ctx, "server.shutdown_failed", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

// errorHandler fiber hatalarını {"error": msg} olarak döner, diğerlerini
// loglayıp 500'e çevirir.
func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		log.Error(c.UserContext(), "Beklenmeyen hata", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Beklenmeyen sunucu hatası",
		})
	}
}

// newRedis REDIS_URL tanımlıysa istemci açar. Redis'e ulaşılamazsa
// önbellek devre dışı kalır, servis çalışmaya devam eder.
func newRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL geçersiz: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn(ctx, "redis.unavailable", map[string]any{"error": err.Error()})
		_ = client.Close()
		return nil, nil
	}
	return client, nil
}
