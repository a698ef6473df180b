package server

import (
	"github.com/yathin7639/Eco-Move/internal/auth"
	"github.com/yathin7639/Eco-Move/internal/blob"
	"github.com/yathin7639/Eco-Move/internal/challenge"
	"github.com/yathin7639/Eco-Move/internal/community"
	"github.com/yathin7639/Eco-Move/internal/config"
	"github.com/yathin7639/Eco-Move/internal/leaderboard"
	"github.com/yathin7639/Eco-Move/internal/oracle"
	"github.com/yathin7639/Eco-Move/internal/rewards"
	"github.com/yathin7639/Eco-Move/internal/stats"
	"github.com/yathin7639/Eco-Move/internal/stream"
	"github.com/yathin7639/Eco-Move/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	adminMiddleware := auth.AdminOnly()

	blobs := blob.NewStore(s.Redis)
	verifier := oracle.NewClient(s.Cfg.GeminiAPIKey, s.Cfg.GeminiBaseURL)
	board := leaderboard.NewService(s.DB)
	statsSvc := stats.NewService(blobs, board)
	trips := trip.NewManager(verifier, statsSvc, s.Stream)

	auth.RegisterRoutes(s.App.Group("/auth"),
		auth.NewService(s.Cfg.JWTSecret, s.Redis, s.Cfg.AdminEmail, s.Cfg.AdminPassword))
	trip.RegisterRoutes(s.App.Group("/trips"), trips, jwtMiddleware)
	stats.RegisterRoutes(s.App.Group("/me"), statsSvc, jwtMiddleware)
	leaderboard.RegisterRoutes(s.App.Group("/leaderboard"), board, jwtMiddleware)
	community.RegisterRoutes(s.App.Group("/community"), community.NewService(s.DB), jwtMiddleware)
	challenge.RegisterRoutes(s.App.Group("/challenges"), challenge.NewService(blobs), jwtMiddleware, adminMiddleware)
	rewards.RegisterRoutes(s.App.Group("/rewards"), rewards.NewService(statsSvc), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
