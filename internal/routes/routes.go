package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/linkvault/linkvault_api/internal/admin"
	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/auth"
	"github.com/linkvault/linkvault_api/internal/config"
	"github.com/linkvault/linkvault_api/internal/images"
	"github.com/linkvault/linkvault_api/internal/middleware"
	"github.com/linkvault/linkvault_api/internal/notification"
	"github.com/linkvault/linkvault_api/internal/plaid"
	"github.com/linkvault/linkvault_api/internal/profile"
	"github.com/linkvault/linkvault_api/internal/session"
	"github.com/linkvault/linkvault_api/internal/token"
	"github.com/linkvault/linkvault_api/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Plaid overrides the SDK client, mainly for tests.
	Plaid plaid.Client
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg, "linkvault")

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, " + auth.SecretHeader,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	// [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(metrics.Handler())
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app, reg)

	// Services
	var (
		userRepo    user.Repository
		profileRepo profile.Repository
		plaidRepo   plaid.Repository
		tokenStore  token.Store
	)
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		plaidRepo = plaid.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		plaidRepo = plaid.NewMemoryRepository()
	}
	if d.Cache != nil {
		tokenStore = token.NewRedisStore(d.Cache)
	} else {
		tokenStore = token.NewMemoryStore()
	}

	var notifier notification.Notifier = notification.NewLoggerNotifier(d.Logger)
	if d.Cfg.SMTP.Enabled() {
		notifier = notification.NewSMTPNotifier(d.Cfg.SMTP)
	}

	imageStore, err := images.NewStore(d.Cfg.UploadDir)
	if err != nil {
		return err
	}

	plaidClient := d.Plaid
	if plaidClient == nil {
		plaidClient = plaid.NewSDKClient(d.Cfg.Plaid, d.Cfg.IsProduction())
	}

	sessions := session.NewIssuer(d.Cfg.JWTSecret, d.Cfg.AppName, d.Cfg.SessionTTL)
	profileSvc := profile.NewService(profileRepo)
	userSvc := user.NewService(userRepo, profileSvc, imageStore, d.Logger)
	tokenSvc := token.NewService(tokenStore, userSvc, sessions)
	authSvc := auth.NewService(auth.Deps{
		Users:         userSvc,
		Profiles:      profileSvc,
		Tokens:        tokenSvc,
		Sessions:      sessions,
		Notifier:      notifier,
		Templates:     notification.NewTemplates(d.Cfg.BaseURL),
		EmailTokenTTL: d.Cfg.EmailTokenTTL,
		Logger:        d.Logger,
	})
	plaidSvc := plaid.NewService(plaidClient, plaidRepo)
	adminSvc := admin.NewService(d.Logger,
		admin.Target{Name: "users", Purger: userSvc},
		admin.Target{Name: "profiles", Purger: profileSvc},
		admin.Target{Name: "user tokens", Purger: tokenSvc},
		admin.Target{Name: "plaid items", Purger: plaidSvc},
	)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	authn := middleware.Authenticate(sessions, userSvc)
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit, d.Logger)

	RegisterAuthRoutes(api, auth.NewHandler(authSvc, d.Cfg.Secret), rateLimiter)
	RegisterUserRoutes(api, user.NewHandler(userSvc, imageStore), authn)
	RegisterPlaidRoutes(api, plaid.NewHandler(plaidSvc), authn)
	RegisterAdminRoutes(api, admin.NewHandler(adminSvc, d.Cfg.Secret), authn)

	RegisterStaticRoutes(app, d.Cfg.PublicDir)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("Not Found")
	})
	return nil
}

// RegisterStaticRoutes serves the public directory and the two standalone pages.
func RegisterStaticRoutes(app *fiber.App, publicDir string) {
	app.Static("/public", publicDir)
	app.Get("/reset-password", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(publicDir, "reset-password.html"))
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(publicDir, "image.png"))
	})
}
