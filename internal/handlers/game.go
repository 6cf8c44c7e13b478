package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamevault/internal/config"
	"github.com/example/gamevault/internal/models"
	"github.com/example/gamevault/internal/repository"
	"github.com/example/gamevault/internal/storage"
	"github.com/example/gamevault/internal/utils"
	"github.com/example/gamevault/internal/validation"
)

// GameStore is the repository surface the game handlers depend on.
type GameStore interface {
	List(f repository.ListFilter, pg utils.Pagination) ([]models.Game, int64, error)
	Get(id uint) (*models.Game, error)
	Create(patch validation.GamePatch) (*models.Game, error)
	Update(id uint, patch validation.GamePatch) (*models.Game, string, error)
	Delete(id uint) (string, error)
}

// GameHandler manages game CRUD and keeps uploaded image blobs consistent
// with the records that own them.
type GameHandler struct {
	store  GameStore
	images *storage.ImageStore
	cfg    *config.Config
}

// NewGameHandler constructs GameHandler.
func NewGameHandler(store GameStore, images *storage.ImageStore, cfg *config.Config) *GameHandler {
	return &GameHandler{store: store, images: images, cfg: cfg}
}

// ListGames returns the filtered catalog page. An empty result is a valid
// 200 with an empty array, never an error.
func (h *GameHandler) ListGames(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	filter := repository.ListFilter{
		Genre:      c.Query("genre"),
		Publisher:  c.Query("publisher"),
		Developer:  c.Query("developer"),
		SearchTerm: c.Query("searchTerm"),
	}
	if v := c.Query("min"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMin = &parsed
		}
	}
	if v := c.Query("max"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMax = &parsed
		}
	}
	if v := strings.ToUpper(c.Query("sortOrder")); v == "ASC" || v == "DESC" {
		filter.SortOrder = v
	}

	games, total, err := h.store.List(filter, pg)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]GameResponse, 0, len(games))
	for _, game := range games {
		out = append(out, newGameResponse(game, h.cfg.PublicImageURL))
	}

	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(out)
}

// GetGame returns one game by id.
func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		// An unparseable id can never name a record.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Game not found"})
	}

	game, err := h.store.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newGameResponse(*game, h.cfg.PublicImageURL))
}

// CreateGame handles game creation from a JSON body or a multipart form
// with an optional image file. An image uploaded for a request that then
// fails is released immediately.
func (h *GameHandler) CreateGame(c *fiber.Ctx) error {
	patch, file, err := parseGamePayload(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "invalid request body"})
	}

	uploaded := ""
	if file != nil {
		name, err := h.images.Save(file)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store image")
		}
		uploaded = name
		patch.Image = validation.SetTo(name)
	}

	game, err := h.store.Create(patch)
	if err != nil {
		h.images.Release(uploaded)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newGameResponse(*game, h.cfg.PublicImageURL))
}

// UpdateGame applies a partial update. When the stored image is replaced
// or cleared, the previous blob is released after the write commits.
func (h *GameHandler) UpdateGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "invalid game id"})
	}

	patch, file, err := parseGamePayload(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "invalid request body"})
	}

	uploaded := ""
	if file != nil {
		name, err := h.images.Save(file)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store image")
		}
		uploaded = name
		patch.Image = validation.SetTo(name)
	}

	game, previousImage, err := h.store.Update(id, patch)
	if err != nil {
		h.images.Release(uploaded)
		return respondError(c, err)
	}

	if patch.Image.Set {
		current := ""
		if game.Image != nil {
			current = *game.Image
		}
		if previousImage != current {
			h.images.Release(previousImage)
		}
	}

	return c.JSON(newGameResponse(*game, h.cfg.PublicImageURL))
}

// DeleteGame removes a game, its genre associations and its owned image.
func (h *GameHandler) DeleteGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "invalid game id"})
	}

	image, err := h.store.Delete(id)
	if err != nil {
		return respondError(c, err)
	}

	h.images.Release(image)
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseGamePayload decodes the candidate record from either a JSON body or
// a multipart form, returning the optional uploaded image file alongside.
func parseGamePayload(c *fiber.Ctx) (validation.GamePatch, *multipart.FileHeader, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return validation.GamePatch{}, nil, err
		}
		patch := validation.FromForm(form.Value)
		var file *multipart.FileHeader
		if files := form.File["img"]; len(files) > 0 {
			file = files[0]
		}
		return patch, file, nil
	}

	var patch validation.GamePatch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return patch, nil, err
	}
	return patch, nil, nil
}
