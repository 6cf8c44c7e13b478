package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/gamevault/internal/apperr"
	"github.com/example/gamevault/internal/models"
)

// CatalogHandler serves the read-only company and genre lookup tables.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListGenres returns every genre, ordered by id.
func (h *CatalogHandler) ListGenres(c *fiber.Ctx) error {
	var genres []models.Genre
	if err := h.db.Order("id").Find(&genres).Error; err != nil {
		return respondError(c, &apperr.StoreError{Op: "list genres", Err: err})
	}
	return c.JSON(genres)
}

// ListCompanies returns every company, ordered by id.
func (h *CatalogHandler) ListCompanies(c *fiber.Ctx) error {
	var companies []models.Company
	if err := h.db.Order("id").Find(&companies).Error; err != nil {
		return respondError(c, &apperr.StoreError{Op: "list companies", Err: err})
	}
	return c.JSON(companies)
}
