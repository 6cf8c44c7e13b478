package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessageIsDeterministic(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"title": "is required",
		"price": "must be between 1 and 999999",
	}}

	assert.Equal(t, "validation failed: price must be between 1 and 999999; title is required", err.Error())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, "game not found: 42", (&NotFoundError{Entity: "game", IDs: []uint{42}}).Error())
	assert.Equal(t, "genre not found: 7, 9", (&NotFoundError{Entity: "genre", IDs: []uint{7, 9}}).Error())
	assert.Equal(t, "game not found", (&NotFoundError{Entity: "game"}).Error())
}

func TestDuplicateAssociationErrorMessage(t *testing.T) {
	assert.Equal(t, "duplicate genre ids are not allowed: 1", (&DuplicateAssociationError{GenreIDs: []uint{1}}).Error())
	assert.Equal(t, "duplicate genre ids are not allowed", (&DuplicateAssociationError{}).Error())
}

func TestStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := &StoreError{Op: "list games", Err: cause}

	assert.Equal(t, "store: list games: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestTaxonomySurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("while handling request: %w", &NotFoundError{Entity: "game", IDs: []uint{3}})

	var nf *NotFoundError
	require.ErrorAs(t, wrapped, &nf)
	assert.Equal(t, []uint{3}, nf.IDs)

	assert.ErrorIs(t, fmt.Errorf("update: %w", ErrNothingToUpdate), ErrNothingToUpdate)
}
