// Package repository owns the read and write operations for the games
// table and its genre associations. Every mutation validates its payload,
// resolves foreign references, then runs inside one transaction so a
// reader never observes a game with a partial genre set.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/gamevault/internal/apperr"
	"github.com/example/gamevault/internal/models"
	"github.com/example/gamevault/internal/utils"
	"github.com/example/gamevault/internal/validation"
)

// ListFilter captures the recognized catalog filter options. Name filters
// match case-insensitively; nil price bounds are unbounded.
type ListFilter struct {
	Genre      string
	PriceMin   *float64
	PriceMax   *float64
	Publisher  string
	Developer  string
	SortOrder  string
	SearchTerm string
}

// GameRepository performs catalog reads and writes against the store.
type GameRepository struct {
	db *gorm.DB
}

// NewGameRepository constructs a GameRepository.
func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// List returns the filtered, ordered page of games plus the total match
// count. An empty result is not an error.
func (r *GameRepository) List(f ListFilter, pg utils.Pagination) ([]models.Game, int64, error) {
	q := r.db.Model(&models.Game{}).
		Joins("JOIN companies AS publishers ON publishers.id = games.publisher_id").
		Joins("JOIN companies AS developers ON developers.id = games.developer_id")

	if f.Genre != "" {
		q = q.Where("games.id IN (SELECT gg.game_id FROM game_genres gg JOIN genres ge ON ge.id = gg.genre_id WHERE ge.name ILIKE ?)", f.Genre)
	}
	if f.Publisher != "" {
		q = q.Where("publishers.name ILIKE ?", f.Publisher)
	}
	if f.Developer != "" {
		q = q.Where("developers.name ILIKE ?", f.Developer)
	}
	if f.SearchTerm != "" {
		q = q.Where("games.title ILIKE ?", "%"+f.SearchTerm+"%")
	}
	if f.PriceMin != nil {
		q = q.Where("games.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("games.price <= ?", *f.PriceMax)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, &apperr.StoreError{Op: "count games", Err: err}
	}

	switch strings.ToUpper(f.SortOrder) {
	case "ASC":
		q = q.Order("games.price asc")
	case "DESC":
		q = q.Order("games.price desc")
	default:
		q = q.Order("games.id asc")
	}

	var games []models.Game
	if err := q.Preload("Publisher").Preload("Developer").Preload("Genres", genreOrder).
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&games).Error; err != nil {
		return nil, 0, &apperr.StoreError{Op: "list games", Err: err}
	}
	return games, total, nil
}

// Get loads one game with its companies and genres.
func (r *GameRepository) Get(id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.Preload("Publisher").Preload("Developer").Preload("Genres", genreOrder).
		First(&game, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
	}
	if err != nil {
		return nil, &apperr.StoreError{Op: "get game", Err: err}
	}
	return &game, nil
}

// Create validates the candidate record, resolves its references and
// inserts the game row together with its genre associations, all or
// nothing. Returns the freshly materialized record.
func (r *GameRepository) Create(patch validation.GamePatch) (*models.Game, error) {
	if err := validation.Validate(patch, validation.ModeCreate); err != nil {
		return nil, err
	}

	releaseDate, err := validation.ParseDate(patch.ReleaseDate.Value)
	if err != nil {
		return nil, &apperr.ValidationError{Fields: map[string]string{"release_date": "must be a YYYY-MM-DD date"}}
	}

	game := models.Game{
		Title:            patch.Title.Value,
		Offer:            patch.Offer.Value,
		Price:            patch.Price.Value,
		Stock:            patch.Stock.Value,
		Rating:           patch.Rating.Value,
		ReleaseDate:      releaseDate,
		ShortDescription: patch.ShortDescription.Value,
		PublisherID:      patch.Publisher.Value,
		DeveloperID:      patch.Developer.Value,
	}
	if patch.Image.Set && !patch.Image.Null {
		img := patch.Image.Value
		game.Image = &img
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := resolveReferences(tx, &game.PublisherID, &game.DeveloperID, patch.Genres.Value); err != nil {
			return err
		}
		genres, err := loadGenres(tx, patch.Genres.Value)
		if err != nil {
			return err
		}
		game.Genres = genres
		if err := tx.Omit("Genres.*").Create(&game).Error; err != nil {
			return writeError("create game", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(game.ID)
}

// Update merges a partial record into the stored game. Only supplied
// fields are written; a supplied genre set fully replaces the existing
// associations. Returns the reloaded record and the previously stored
// image name so the caller can reconcile the blob lifecycle.
func (r *GameRepository) Update(id uint, patch validation.GamePatch) (*models.Game, string, error) {
	if patch.Empty() {
		return nil, "", apperr.ErrNothingToUpdate
	}
	if err := validation.Validate(patch, validation.ModeUpdate); err != nil {
		return nil, "", err
	}

	var previousImage string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Game
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
			}
			return &apperr.StoreError{Op: "load game", Err: err}
		}
		if existing.Image != nil {
			previousImage = *existing.Image
		}

		var publisherID, developerID *uint
		if patch.Publisher.Set {
			publisherID = &patch.Publisher.Value
		}
		if patch.Developer.Set {
			developerID = &patch.Developer.Value
		}
		var genreIDs []uint
		if patch.Genres.Set && !patch.Genres.Null {
			genreIDs = patch.Genres.Value
		}
		if err := resolveReferences(tx, publisherID, developerID, genreIDs); err != nil {
			return err
		}

		if cols := updateColumns(patch); len(cols) > 0 {
			if err := tx.Model(&existing).Updates(cols).Error; err != nil {
				return writeError("update game", err)
			}
		}

		if patch.Genres.Set && !patch.Genres.Null {
			genres, err := loadGenres(tx, patch.Genres.Value)
			if err != nil {
				return err
			}
			// Full replace: delete the association rows, then reinsert.
			if err := tx.Model(&existing).Association("Genres").Clear(); err != nil {
				return &apperr.StoreError{Op: "clear genres", Err: err}
			}
			if len(genres) > 0 {
				if err := tx.Model(&existing).Association("Genres").Append(&genres); err != nil {
					return writeError("replace genres", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	game, err := r.Get(id)
	if err != nil {
		return nil, "", err
	}
	return game, previousImage, nil
}

// Delete removes the game's genre associations, then the game row, and
// returns the stored image name for blob cleanup. A missing id reports a
// NotFoundError, not a store failure.
func (r *GameRepository) Delete(id uint) (string, error) {
	var image string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Game
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
			}
			return &apperr.StoreError{Op: "load game", Err: err}
		}
		if existing.Image != nil {
			image = *existing.Image
		}

		if err := tx.Model(&existing).Association("Genres").Clear(); err != nil {
			return &apperr.StoreError{Op: "clear genres", Err: err}
		}
		res := tx.Delete(&models.Game{}, id)
		if res.Error != nil {
			return &apperr.StoreError{Op: "delete game", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return &apperr.NotFoundError{Entity: "game", IDs: []uint{id}}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return image, nil
}

// updateColumns maps set patch fields onto parameterized column values.
// Explicit null only reaches the nullable image column; validation rejects
// it everywhere else before this runs.
func updateColumns(p validation.GamePatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title.Set {
		cols["title"] = p.Title.Value
	}
	if p.Image.Set {
		if p.Image.Null {
			cols["image"] = nil
		} else {
			cols["image"] = p.Image.Value
		}
	}
	if p.Offer.Set {
		cols["offer"] = p.Offer.Value
	}
	if p.Price.Set {
		cols["price"] = p.Price.Value
	}
	if p.Stock.Set {
		cols["stock"] = p.Stock.Value
	}
	if p.Rating.Set {
		cols["rating"] = p.Rating.Value
	}
	if p.ReleaseDate.Set {
		if t, err := validation.ParseDate(p.ReleaseDate.Value); err == nil {
			cols["release_date"] = t
		}
	}
	if p.ShortDescription.Set {
		cols["short_description"] = p.ShortDescription.Value
	}
	if p.Publisher.Set {
		cols["publisher_id"] = p.Publisher.Value
	}
	if p.Developer.Set {
		cols["developer_id"] = p.Developer.Value
	}
	return cols
}

func loadGenres(tx *gorm.DB, ids []uint) ([]models.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := tx.Where("id IN ?", ids).Order("id").Find(&genres).Error; err != nil {
		return nil, &apperr.StoreError{Op: "load genres", Err: err}
	}
	return genres, nil
}

// writeError maps a store-level unique violation on the association table
// to the duplicate taxonomy; anything else is an opaque store failure.
func writeError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.DuplicateAssociationError{}
	}
	return &apperr.StoreError{Op: op, Err: err}
}

func genreOrder(db *gorm.DB) *gorm.DB {
	return db.Order("genres.id")
}
