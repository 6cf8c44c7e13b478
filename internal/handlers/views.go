package handlers

import (
	"strings"

	"github.com/example/gamevault/internal/models"
	"github.com/example/gamevault/internal/storage"
	"github.com/example/gamevault/internal/validation"
)

// GameResponse is the external representation of a game record.
type GameResponse struct {
	ID               uint     `json:"id"`
	Image            string   `json:"img"`
	Offer            float64  `json:"offer"`
	Price            float64  `json:"price"`
	Stock            int      `json:"stock"`
	Title            string   `json:"title"`
	Rating           float64  `json:"rating"`
	ReleaseDate      string   `json:"release_date"`
	ShortDescription string   `json:"short_description"`
	Publisher        string   `json:"publisher"`
	Developer        string   `json:"developer"`
	Genres           []string `json:"genres"`
}

// newGameResponse shapes a stored row for the API: a missing image becomes
// the shared default, the release date drops its time component, genres
// materialize as a name list (never null) and the image reference is
// prefixed with the externally served base URL.
func newGameResponse(game models.Game, imageBase string) GameResponse {
	image := storage.DefaultImage
	if game.Image != nil && *game.Image != "" {
		image = *game.Image
	}
	if imageBase != "" {
		image = strings.TrimRight(imageBase, "/") + "/" + image
	}

	genres := make([]string, 0, len(game.Genres))
	for _, genre := range game.Genres {
		genres = append(genres, genre.Name)
	}

	return GameResponse{
		ID:               game.ID,
		Image:            image,
		Offer:            game.Offer,
		Price:            game.Price,
		Stock:            game.Stock,
		Title:            game.Title,
		Rating:           game.Rating,
		ReleaseDate:      game.ReleaseDate.Format(validation.DateLayout),
		ShortDescription: game.ShortDescription,
		Publisher:        game.Publisher.Name,
		Developer:        game.Developer.Name,
		Genres:           genres,
	}
}
