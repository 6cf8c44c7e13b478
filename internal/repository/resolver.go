package repository

import (
	"gorm.io/gorm"

	"github.com/example/gamevault/internal/apperr"
	"github.com/example/gamevault/internal/models"
)

// resolveReferences confirms every supplied company and genre id exists
// before the caller mutates anything. Genre ids are checked in full so the
// error can list every missing one, not just the first.
func resolveReferences(tx *gorm.DB, publisherID, developerID *uint, genreIDs []uint) error {
	if publisherID != nil {
		if err := companyExists(tx, "publisher", *publisherID); err != nil {
			return err
		}
	}
	if developerID != nil {
		if err := companyExists(tx, "developer", *developerID); err != nil {
			return err
		}
	}
	if len(genreIDs) == 0 {
		return nil
	}

	var found []uint
	if err := tx.Model(&models.Genre{}).Where("id IN ?", genreIDs).Pluck("id", &found).Error; err != nil {
		return &apperr.StoreError{Op: "resolve genres", Err: err}
	}
	existing := make(map[uint]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	var missing []uint
	for _, id := range genreIDs {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &apperr.NotFoundError{Entity: "genre", IDs: missing}
	}
	return nil
}

func companyExists(tx *gorm.DB, entity string, id uint) error {
	var n int64
	if err := tx.Model(&models.Company{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return &apperr.StoreError{Op: "resolve " + entity, Err: err}
	}
	if n == 0 {
		return &apperr.NotFoundError{Entity: entity, IDs: []uint{id}}
	}
	return nil
}
