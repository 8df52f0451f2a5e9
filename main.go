package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quest-rewards-system/handlers"
	"quest-rewards-system/mcptools"
	"quest-rewards-system/middleware"
	"quest-rewards-system/models"
	"quest-rewards-system/services"
	"quest-rewards-system/utils"
	"quest-rewards-system/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file found, reading environment variables directly")
	}

	if os.Getenv("AUTH_TOKEN") == "" {
		log.Fatal("AUTH_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// Durable mirror is optional: without DATABASE_URL the in-memory state
	// stands alone.
	var mirror services.Mirror = services.NopMirror{}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		if err := db.AutoMigrate(
			&models.User{},
			&models.Quest{},
			&models.Submission{},
			&models.Reward{},
		); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
		worker := workers.NewMirrorWorker(db)
		go worker.Start(ctx)
		mirror = worker
		log.Info("✅ postgres mirror enabled")
	} else {
		log.Warn("DATABASE_URL not set, running without the durable mirror")
	}

	if ok, err := utils.InitProofStore(); err != nil {
		log.WithError(err).Fatal("failed to initialize proof store")
	} else if ok {
		log.Info("✅ proof store enabled")
	}

	userService := services.NewUserService(clock, mirror)
	questService := services.NewQuestService(clock, mirror)
	submissionService := services.NewSubmissionService(clock, mirror, questService)
	rewardService := services.NewRewardService(clock, mirror)
	economy := services.NewEconomyService(clock, userService, questService, submissionService, rewardService)

	questService.SeedDefaults()
	rewardService.SeedDefaults()

	sched, err := economy.StartRolloverScheduler()
	if err != nil {
		log.WithError(err).Fatal("failed to start rollover scheduler")
	}
	defer func() { _ = sched.Shutdown() }()

	app := fiber.New(fiber.Config{
		AppName: "quest-rewards-system",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.SetupQuestRoutes(app, economy)

	// MCP tool surface, behind the same bearer token as the HTTP API.
	mcpServer := mcptools.NewServer(economy)
	app.All("/mcp", middleware.BearerAuth(os.Getenv("AUTH_TOKEN")),
		adaptor.HTTPHandler(mcptools.HTTPHandler(mcpServer)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8086"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.WithError(err).Error("server error")
		}
	}()

	log.Infof("✅ Server running on http://localhost:%s", port)
	log.Info("✅ MCP endpoint mounted at /mcp")

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}
