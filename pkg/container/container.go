package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"book-review-backend/internal/config"
	bookHandler "book-review-backend/internal/domains/book/handler"
	bookRepo "book-review-backend/internal/domains/book/repository"
	bookService "book-review-backend/internal/domains/book/service"
	genreHandler "book-review-backend/internal/domains/genre/handler"
	genreRepo "book-review-backend/internal/domains/genre/repository"
	genreService "book-review-backend/internal/domains/genre/service"
	reviewHandler "book-review-backend/internal/domains/review/handler"
	reviewRepo "book-review-backend/internal/domains/review/repository"
	reviewService "book-review-backend/internal/domains/review/service"
	infraCache "book-review-backend/internal/infrastructure/cache"
	infraDatabase "book-review-backend/internal/infrastructure/database"
	"book-review-backend/internal/infrastructure/queue"
	"book-review-backend/pkg/cache"
	"book-review-backend/pkg/database"
	"book-review-backend/pkg/jwt"
)

// Container is the root of the dependency graph, shared by the API and
// worker binaries. Initialization order is config, infrastructure,
// repositories, services, handlers; every component is a singleton.
type Container struct {
	Config      *config.Config
	DB          *infraDatabase.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	QueueClient *queue.Client

	BookRepo   bookRepo.BookRepository
	ReviewRepo reviewRepo.ReviewRepository
	GenreRepo  genreRepo.GenreRepository

	BookService   bookService.BookService
	ReviewService reviewService.ReviewService
	GenreService  genreService.GenreService

	BookHandler   *bookHandler.BookHandler
	ReviewHandler *reviewHandler.ReviewHandler
	GenreHandler  *genreHandler.GenreHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("Config loaded")

	db := infraDatabase.NewPostgresDB(&cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Info().Msg("Database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		// The cache and queue degrade gracefully; a dead Redis is worth a
		// warning at startup, not a refusal to start.
		log.Warn().Err(err).Msg("Redis connection failed")
	} else {
		log.Info().Msg("Redis connected")
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	c.QueueClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("Container initialized")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.BookRepo = bookRepo.NewPostgresBookRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresReviewRepository(pool)
	c.GenreRepo = genreRepo.NewPostgresGenreRepository(pool)
}

func (c *Container) initServices() {
	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache, c.QueueClient)
	c.ReviewService = reviewService.NewReviewService(database.PoolRunner{Pool: c.DB.Pool}, c.ReviewRepo, c.BookRepo, c.Cache)
	c.GenreService = genreService.NewGenreService(c.GenreRepo, c.Cache)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.GenreHandler = genreHandler.NewGenreHandler(c.GenreService)
}

// Close releases infrastructure handles in reverse initialization order.
func (c *Container) Close() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close queue client")
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
