package server

import (
	"time"

	"travelogy-engine/internal/auth"
	"travelogy-engine/internal/config"
	"travelogy-engine/internal/diary"
	"travelogy-engine/internal/export"
	"travelogy-engine/internal/gamification"
	"travelogy-engine/internal/geosource"
	"travelogy-engine/internal/nearby"
	"travelogy-engine/internal/remote"
	"travelogy-engine/internal/stream"
	"travelogy-engine/internal/tracking"
	"travelogy-engine/internal/trips"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	Redis   *redis.Client
	Backend *remote.Client
	Feed    *geosource.Feed
	Tracker *tracking.Tracker
	Stream  *stream.Hub
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	backend := remote.NewClient(cfg.BackendAPIURL, time.Duration(cfg.BackendTimeoutSec)*time.Second)
	feed := geosource.NewFeed()
	hub := stream.NewHub(redisClient)

	throttle := nearby.Throttle{
		MinMoveMeters: cfg.NearbyMinMoveM,
		MinInterval:   time.Duration(cfg.NearbyMinIntervalSec) * time.Second,
	}
	places := nearby.NewService(backend, throttle, cfg.NearbyRadiusM)

	tracker := tracking.NewTracker(feed, backend, places, hub,
		time.Duration(cfg.InitialFixTimeoutSec)*time.Second)

	s := &Server{
		App:     app,
		Cfg:     cfg,
		Redis:   redisClient,
		Backend: backend,
		Feed:    feed,
		Tracker: tracker,
		Stream:  hub,
	}

	registerRoutes(s, places)
	return s
}

func registerRoutes(s *Server, places *nearby.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	trackingGroup := s.App.Group("/tracking")
	tracking.RegisterRoutes(trackingGroup, s.Tracker, s.Feed, jwtMiddleware)
	export.RegisterRoutes(trackingGroup, s.Tracker, jwtMiddleware)

	nearby.RegisterRoutes(s.App.Group("/nearby"), places, jwtMiddleware)

	tripsGroup := s.App.Group("/trips")
	trips.RegisterRoutes(tripsGroup, s.Backend, jwtMiddleware)
	diary.RegisterRoutes(tripsGroup, diary.NewService(s.Backend, s.Backend), s.Tracker, jwtMiddleware)
	gamification.RegisterRoutes(s.App.Group("/gamification"), s.Backend, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
