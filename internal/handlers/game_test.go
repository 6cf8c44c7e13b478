package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gamevault/internal/apperr"
	"github.com/example/gamevault/internal/config"
	"github.com/example/gamevault/internal/models"
	"github.com/example/gamevault/internal/repository"
	"github.com/example/gamevault/internal/storage"
	"github.com/example/gamevault/internal/utils"
	"github.com/example/gamevault/internal/validation"
)

// stubGameStore lets each test script the repository behavior.
type stubGameStore struct {
	listFn   func(repository.ListFilter, utils.Pagination) ([]models.Game, int64, error)
	getFn    func(uint) (*models.Game, error)
	createFn func(validation.GamePatch) (*models.Game, error)
	updateFn func(uint, validation.GamePatch) (*models.Game, string, error)
	deleteFn func(uint) (string, error)
}

func (s *stubGameStore) List(f repository.ListFilter, pg utils.Pagination) ([]models.Game, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(f, pg)
}

func (s *stubGameStore) Get(id uint) (*models.Game, error) {
	if s.getFn == nil {
		return nil, &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
	}
	return s.getFn(id)
}

func (s *stubGameStore) Create(patch validation.GamePatch) (*models.Game, error) {
	if s.createFn == nil {
		return nil, errors.New("unexpected Create call")
	}
	return s.createFn(patch)
}

func (s *stubGameStore) Update(id uint, patch validation.GamePatch) (*models.Game, string, error) {
	if s.updateFn == nil {
		return nil, "", errors.New("unexpected Update call")
	}
	return s.updateFn(id, patch)
}

func (s *stubGameStore) Delete(id uint) (string, error) {
	if s.deleteFn == nil {
		return "", errors.New("unexpected Delete call")
	}
	return s.deleteFn(id)
}

func newTestApp(t *testing.T, store GameStore) (*fiber.App, *storage.ImageStore) {
	t.Helper()

	images, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{PublicImageURL: "/images"}
	h := NewGameHandler(store, images, cfg)

	app := fiber.New()
	app.Get("/api/games", h.ListGames)
	app.Get("/api/games/:id", h.GetGame)
	app.Post("/api/games", h.CreateGame)
	app.Patch("/api/games/:id", h.UpdateGame)
	app.Delete("/api/games/:id", h.DeleteGame)
	return app, images
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func storedFiles(t *testing.T, images *storage.ImageStore) []string {
	t.Helper()
	entries, err := os.ReadDir(images.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestListGamesEmptyResultIsOK(t *testing.T) {
	app, _ := newTestApp(t, &stubGameStore{})

	resp := doJSON(t, app, http.MethodGet, "/api/games?min=1000000", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", readBody(t, resp))
	assert.Equal(t, "0", resp.Header.Get("X-Total-Count"))
}

func TestListGamesForwardsFilters(t *testing.T) {
	var captured repository.ListFilter
	store := &stubGameStore{
		listFn: func(f repository.ListFilter, pg utils.Pagination) ([]models.Game, int64, error) {
			captured = f
			return []models.Game{sampleGame()}, 1, nil
		},
	}
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodGet,
		"/api/games?genre=RPG&min=10&max=50&publisher=Valve&developer=Nintendo&sortOrder=desc&searchTerm=game", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RPG", captured.Genre)
	require.NotNil(t, captured.PriceMin)
	assert.Equal(t, 10.0, *captured.PriceMin)
	require.NotNil(t, captured.PriceMax)
	assert.Equal(t, 50.0, *captured.PriceMax)
	assert.Equal(t, "Valve", captured.Publisher)
	assert.Equal(t, "Nintendo", captured.Developer)
	assert.Equal(t, "DESC", captured.SortOrder)
	assert.Equal(t, "game", captured.SearchTerm)
}

func TestListGamesIgnoresMalformedNumericFilters(t *testing.T) {
	var captured repository.ListFilter
	store := &stubGameStore{
		listFn: func(f repository.ListFilter, pg utils.Pagination) ([]models.Game, int64, error) {
			captured = f
			return nil, 0, nil
		},
	}
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodGet, "/api/games?min=abc&sortOrder=sideways", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, captured.PriceMin)
	assert.Empty(t, captured.SortOrder)
}

func TestGetGame(t *testing.T) {
	game := sampleGame()
	store := &stubGameStore{
		getFn: func(id uint) (*models.Game, error) {
			if id != 7 {
				return nil, &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
			}
			return &game, nil
		},
	}
	app, _ := newTestApp(t, store)

	t.Run("found", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/games/7", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body GameResponse
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
		assert.Equal(t, "Game A", body.Title)
		assert.Equal(t, []string{"Action", "RPG"}, body.Genres)
		assert.Equal(t, "2024-01-15", body.ReleaseDate)
	})

	t.Run("missing id", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/games/99", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/games/abc", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreateGame(t *testing.T) {
	payload := `{
		"title": "Game A", "price": 29.99, "offer": 0, "stock": 10, "rating": 0,
		"developer": 1, "publisher": 2, "release_date": "2024-01-15",
		"short_description": "desc", "genres": [1, 2]
	}`

	t.Run("created", func(t *testing.T) {
		game := sampleGame()
		var captured validation.GamePatch
		store := &stubGameStore{
			createFn: func(p validation.GamePatch) (*models.Game, error) {
				captured = p
				return &game, nil
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPost, "/api/games", payload)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body GameResponse
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
		assert.Equal(t, []string{"Action", "RPG"}, body.Genres)
		assert.Equal(t, "2024-01-15", body.ReleaseDate)
		assert.Equal(t, "/images/default.webp", body.Image)

		assert.Equal(t, validation.SetTo("Game A"), captured.Title)
		assert.Equal(t, validation.SetTo([]uint{1, 2}), captured.Genres)
	})

	t.Run("validation failure", func(t *testing.T) {
		store := &stubGameStore{
			createFn: func(validation.GamePatch) (*models.Game, error) {
				return nil, &apperr.ValidationError{Fields: map[string]string{"price": "is required"}}
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPost, "/api/games", `{"title":"x"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), `"price":"is required"`)
	})

	t.Run("missing reference", func(t *testing.T) {
		store := &stubGameStore{
			createFn: func(validation.GamePatch) (*models.Game, error) {
				return nil, &apperr.NotFoundError{Entity: "genre", IDs: []uint{9}}
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPost, "/api/games", payload)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "genre not found: 9")
	})

	t.Run("duplicate genres", func(t *testing.T) {
		store := &stubGameStore{
			createFn: func(validation.GamePatch) (*models.Game, error) {
				return nil, &apperr.DuplicateAssociationError{GenreIDs: []uint{1}}
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPost, "/api/games", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure is generic", func(t *testing.T) {
		store := &stubGameStore{
			createFn: func(validation.GamePatch) (*models.Game, error) {
				return nil, &apperr.StoreError{Op: "create game", Err: errors.New("connection reset")}
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPost, "/api/games", payload)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "Something went wrong")
		assert.NotContains(t, body, "connection reset")
	})
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("img", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

var createFormFields = map[string]string{
	"title":             "Game A",
	"price":             "29.99",
	"offer":             "0",
	"stock":             "10",
	"rating":            "0",
	"developer":         "1",
	"publisher":         "2",
	"release_date":      "2024-01-15",
	"short_description": "desc",
	"genres":            "1,2",
}

func TestCreateGameMultipartUpload(t *testing.T) {
	game := sampleGame()
	var captured validation.GamePatch
	store := &stubGameStore{
		createFn: func(p validation.GamePatch) (*models.Game, error) {
			captured = p
			return &game, nil
		},
	}
	app, images := newTestApp(t, store)

	resp, err := app.Test(multipartRequest(t, http.MethodPost, "/api/games", createFormFields, "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.True(t, captured.Image.Set)
	assert.True(t, strings.HasPrefix(captured.Image.Value, "img-"))
	assert.Equal(t, validation.SetTo(29.99), captured.Price)
	assert.Equal(t, validation.SetTo([]uint{1, 2}), captured.Genres)

	// Committed upload stays on disk.
	assert.Len(t, storedFiles(t, images), 1)
}

func TestCreateGameReleasesOrphanedUpload(t *testing.T) {
	store := &stubGameStore{
		createFn: func(validation.GamePatch) (*models.Game, error) {
			return nil, &apperr.ValidationError{Fields: map[string]string{"title": "is required"}}
		},
	}
	app, images := newTestApp(t, store)

	resp, err := app.Test(multipartRequest(t, http.MethodPost, "/api/games", map[string]string{"price": "10"}, "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	assert.Empty(t, storedFiles(t, images))
}

func TestUpdateGame(t *testing.T) {
	t.Run("nothing to update", func(t *testing.T) {
		store := &stubGameStore{
			updateFn: func(uint, validation.GamePatch) (*models.Game, string, error) {
				return nil, "", apperr.ErrNothingToUpdate
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPatch, "/api/games/7", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "No values to update")
	})

	t.Run("malformed id", func(t *testing.T) {
		app, _ := newTestApp(t, &stubGameStore{})
		resp := doJSON(t, app, http.MethodPatch, "/api/games/abc", `{"price":10}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("null price rejected", func(t *testing.T) {
		store := &stubGameStore{
			updateFn: func(_ uint, p validation.GamePatch) (*models.Game, string, error) {
				return nil, "", validationFor(p)
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPatch, "/api/games/7", `{"price":null}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "must not be null")
	})

	t.Run("updated", func(t *testing.T) {
		game := sampleGame()
		store := &stubGameStore{
			updateFn: func(id uint, p validation.GamePatch) (*models.Game, string, error) {
				assert.Equal(t, uint(7), id)
				assert.Equal(t, validation.SetTo(19.99), p.Price)
				return &game, "", nil
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodPatch, "/api/games/7", `{"price":19.99}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// validationFor runs the real update-mode engine, so handler tests exercise
// the same null semantics the repository enforces.
func validationFor(p validation.GamePatch) error {
	return validation.Validate(p, validation.ModeUpdate)
}

func TestUpdateGameReplacesImage(t *testing.T) {
	previous := "img-old.png"
	store := &stubGameStore{
		updateFn: func(_ uint, p validation.GamePatch) (*models.Game, string, error) {
			game := sampleGame()
			img := p.Image.Value
			game.Image = &img
			return &game, previous, nil
		},
	}
	app, images := newTestApp(t, store)

	require.NoError(t, os.WriteFile(filepath.Join(images.Dir(), previous), []byte("old"), 0o644))

	resp, err := app.Test(multipartRequest(t, http.MethodPatch, "/api/games/7", map[string]string{"price": "10"}, "new.png"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	names := storedFiles(t, images)
	require.Len(t, names, 1)
	assert.NotEqual(t, previous, names[0])
}

func TestUpdateGameKeepsImageWhenUntouched(t *testing.T) {
	previous := "img-old.png"
	store := &stubGameStore{
		updateFn: func(uint, validation.GamePatch) (*models.Game, string, error) {
			game := sampleGame()
			game.Image = &previous
			return &game, previous, nil
		},
	}
	app, images := newTestApp(t, store)

	require.NoError(t, os.WriteFile(filepath.Join(images.Dir(), previous), []byte("old"), 0o644))

	resp := doJSON(t, app, http.MethodPatch, "/api/games/7", `{"price":10}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{previous}, storedFiles(t, images))
}

func TestDeleteGame(t *testing.T) {
	t.Run("deleted with image cleanup", func(t *testing.T) {
		image := "img-owned.png"
		store := &stubGameStore{
			deleteFn: func(id uint) (string, error) {
				assert.Equal(t, uint(7), id)
				return image, nil
			},
		}
		app, images := newTestApp(t, store)
		require.NoError(t, os.WriteFile(filepath.Join(images.Dir(), image), []byte("x"), 0o644))

		resp := doJSON(t, app, http.MethodDelete, "/api/games/7", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, storedFiles(t, images))
	})

	t.Run("second delete is a defined not-found", func(t *testing.T) {
		calls := 0
		store := &stubGameStore{
			deleteFn: func(id uint) (string, error) {
				calls++
				if calls == 1 {
					return "", nil
				}
				return "", &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
			},
		}
		app, _ := newTestApp(t, store)

		resp := doJSON(t, app, http.MethodDelete, "/api/games/7", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodDelete, "/api/games/7", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "game not found")
	})

	t.Run("malformed id", func(t *testing.T) {
		app, _ := newTestApp(t, &stubGameStore{})
		resp := doJSON(t, app, http.MethodDelete, "/api/games/abc", "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}
