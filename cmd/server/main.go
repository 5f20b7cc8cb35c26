package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hfortier/linkstash/internal/cache"
	"github.com/hfortier/linkstash/internal/config"
	"github.com/hfortier/linkstash/internal/domain/fiber/handler"
	"github.com/hfortier/linkstash/internal/middleware"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/hfortier/linkstash/internal/repository"
	"github.com/hfortier/linkstash/internal/scraper"
	"github.com/hfortier/linkstash/internal/service"
	"github.com/hfortier/linkstash/internal/usecase"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return config.LoadAppConfig().Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(100, 1*time.Minute))

	db := ConnectDB()

	jobRepo := repository.NewJobRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	tagRepo := repository.NewTagRepository(db)
	embeddingRepo := repository.NewEmbeddingRepository(db)

	statusCache := connectCache(ctx)

	gemini, err := service.NewGeminiService(ctx)
	if err != nil {
		log.Fatal(err)
	}
	var analyzer usecase.Analyzer = gemini
	if config.LoadAIConfig().Provider == "openrouter" {
		analyzer = service.NewOpenRouterService()
	}

	scrapeUC := usecase.NewScrapeUsecase(
		jobRepo,
		bookmarkRepo,
		collectionRepo,
		tagRepo,
		embeddingRepo,
		scraper.NewPageFetcher(),
		scraper.NewHTMLExtractor(),
		analyzer,
		gemini,
		statusCache,
		usecase.DefaultJobTimeout,
	)
	searchUC := usecase.NewSearchUsecase(gemini, embeddingRepo)
	bookmarkUC := usecase.NewBookmarkUsecase(bookmarkRepo, collectionRepo, tagRepo)

	handler.NewScrapeHandler(scrapeUC).RegisterRoutes(app)
	handler.NewSearchHandler(searchUC).RegisterRoutes(app)
	handler.NewBookmarkHandler(bookmarkUC).RegisterRoutes(app)

	// Jobs orphaned by a previous crash must be failed before new traffic
	// can resubmit their URLs.
	scrapeUC.CleanupOrphanedJobs(ctx)

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func connectCache(ctx context.Context) cache.Cache {
	redisConfig := config.LoadRedisConfig()
	if redisConfig.URL == "" {
		slog.Info("REDIS_URL not set, job status cache disabled")
		return cache.NewNoopCache()
	}
	redisCache, err := cache.NewRedisCache(redisConfig.URL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, job status cache disabled", "err", err)
		return cache.NewNoopCache()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		slog.Warn("redis unreachable, job status cache disabled", "err", err)
		return cache.NewNoopCache()
	}
	return redisCache
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
		dbConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	// uuid_generate_v4 defaults and the vector column type need these.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("could not enable uuid-ossp extension: ", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		log.Fatal("could not enable vector extension: ", err)
	}

	err = db.AutoMigrate(
		&model.Collection{},
		&model.Bookmark{},
		&model.Tag{},
		&model.BookmarkAISuggestion{},
		&model.Job{},
		&model.ContentEmbedding{},
	)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
