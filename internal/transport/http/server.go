package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"forum_backend/internal/cache"
	"forum_backend/internal/config"
	"forum_backend/internal/database"
	"forum_backend/internal/handler"
	"forum_backend/internal/queue"
	forumredis "forum_backend/internal/redis"
	"forum_backend/internal/repository"
	"forum_backend/internal/service"
	authmw "forum_backend/internal/transport/http/middleware"
	"forum_backend/internal/worker"
)

// Run wires the whole application together and serves until the listener
// fails.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := forumredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)

	// Services
	userService := service.NewUserService(userRepo)
	discussionService := service.NewDiscussionService(postRepo, discussionRepo)
	authService := service.NewAuthService(cfg)
	presenceService := service.NewPresenceService(
		cache.NewPresenceCache(redisClient.Client),
		queue.NewPublisher(redisClient.Client),
	)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// Activity workers consume the presence events the middleware publishes
	workerCfg := worker.DefaultManagerConfig()
	workerCfg.WorkerCount = cfg.ActivityWorkerCount
	manager := worker.NewManager(
		queue.NewConsumer(redisClient.Client),
		worker.NewHandler(userRepo),
		workerCfg,
	)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start activity workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userService, authService),
		UserHandler:       handler.NewUserHandler(userService, mediaService),
		DiscussionHandler: handler.NewDiscussionHandler(discussionService),
		Activity:          authmw.ActivityMiddleware(presenceService),
		JWTSecret:         cfg.JWTSecret,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
