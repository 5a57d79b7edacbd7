package server

import (
	"backend-ridehub/internal/auth"
	"backend-ridehub/internal/config"
	"backend-ridehub/internal/queue"
	"backend-ridehub/internal/stream"
	"backend-ridehub/internal/track"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App          *fiber.App
	Cfg          config.Config
	DB           *pgxpool.Pool
	Redis        *redis.Client
	Stream       *stream.Hub
	Queue        *queue.Queue
	Orchestrator *track.Orchestrator
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20, // upload ceiling plus form overhead
	})
	app.Use(recover.New())
	app.Use(logger.New())

	trackSvc := track.NewService(db)
	q := queue.New(redisClient)
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: hub,
		Queue:  q,
		Orchestrator: track.NewOrchestrator(
			trackSvc, q, hub, track.PipelineFromConfig(cfg), cfg.SyncPointThreshold),
	}

	registerRoutes(s, trackSvc)
	return s
}

func registerRoutes(s *Server, trackSvc *track.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	track.RegisterRoutes(s.App.Group("/tracks"), trackSvc, s.Orchestrator, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
