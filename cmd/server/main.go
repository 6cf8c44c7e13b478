package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/gamevault/internal/config"
	"github.com/example/gamevault/internal/database"
	"github.com/example/gamevault/internal/routes"
	"github.com/example/gamevault/internal/storage"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := database.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("admin seeding failed: %v", err)
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("image store init failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "Gamevault Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Static("/images", cfg.UploadDir)

	routes.Register(app, db, cfg, images)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
