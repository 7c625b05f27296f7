package routers

import (
	"context"
	"time"

	"learnhub/database"
	"learnhub/middleware"
	authRoutes "learnhub/routers/authRoutes"
	courseRoutes "learnhub/routers/courseRoutes"
	enrollmentRoutes "learnhub/routers/enrollmentRoutes"
	notificationRoutes "learnhub/routers/notificationRoutes"
	supportRoutes "learnhub/routers/supportRoutes"
	userProfileRoutes "learnhub/routers/userRoutes"
	webinarRoutes "learnhub/routers/webinarRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Options configures NewApp.
type Options struct {
	CorsOrigins      string
	UploadDir        string
	MetricsEnabled   bool
	AccessLog        bool
	LoginRateLimit   int // per minute per IP, 0 disables
	ContactRateLimit int // per minute per IP, 0 disables

	// LimiterStorage shares rate-limit counters between instances. nil keeps them in memory.
	LimiterStorage fiber.Storage
}

func rateLimiter(max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests, please try again later", nil)
		},
	})
}

func health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// NewApp builds the fiber app with the middleware stack and every API route.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    10 << 20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CorsOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}
	if opts.MetricsEnabled {
		app.Use(middleware.Metrics)
		app.Get("/metrics", middleware.MetricsHandler())
	}

	app.Get("/health", health)
	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir)
	}

	SetupRoutes(app, opts)
	return app
}

func SetupRoutes(app *fiber.App, opts Options) {
	authRoutes.SetupAuthRoutes(app, rateLimiter(opts.LoginRateLimit, opts.LimiterStorage))
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	webinarRoutes.SetupWebinarRoutes(app)
	supportRoutes.SetupSupportRoutes(app, rateLimiter(opts.ContactRateLimit, opts.LimiterStorage))
	notificationRoutes.SetupNotificationRoutes(app)
}
