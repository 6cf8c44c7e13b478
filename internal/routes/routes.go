package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/gamevault/internal/config"
	"github.com/example/gamevault/internal/handlers"
	"github.com/example/gamevault/internal/middleware"
	"github.com/example/gamevault/internal/repository"
	"github.com/example/gamevault/internal/storage"
)

// Register wires up all HTTP routes. Catalog reads are public; game
// mutations require an admin token.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, images *storage.ImageStore) {
	repo := repository.NewGameRepository(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	gameHandler := handlers.NewGameHandler(repo, images, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	api.Get("/genres", catalogHandler.ListGenres)
	api.Get("/companies", catalogHandler.ListCompanies)

	games := api.Group("/games")
	games.Get("/", gameHandler.ListGames)
	games.Get("/:id", gameHandler.GetGame)

	admin := games.Group("", middleware.AuthMiddleware(cfg), middleware.AdminOnly(db))
	admin.Post("/", gameHandler.CreateGame)
	admin.Patch("/:id", gameHandler.UpdateGame)
	admin.Delete("/:id", gameHandler.DeleteGame)
}
