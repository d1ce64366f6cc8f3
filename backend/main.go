package main

import (
	"context"
	"flag"
	"log"

	"eduledger/backend/config"
	"eduledger/backend/middleware"
	"eduledger/backend/routes"
	"eduledger/backend/services"
	"eduledger/backend/storage"
	"eduledger/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	seed := flag.Bool("seed", false, "seed the database with sample data")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	store := storage.NewGormBackend(db)
	if err := store.AutoMigrate(); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	if *seed {
		if err := services.Seed(context.Background(), services.NewRecorder(store)); err != nil {
			log.Fatalf("Error seeding database: %v", err)
		}
		log.Println("Sample data seeded")
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, store, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
