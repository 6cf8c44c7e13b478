// Package validation normalizes and checks candidate game records. The
// engine is pure: it inspects a tagged patch and either accepts it or
// reports every violated constraint at once.
package validation

import (
	"math"
	"time"

	"github.com/example/gamevault/internal/apperr"
)

// Mode selects which schema variant applies.
type Mode int

const (
	// ModeCreate requires every field except the image, which defaults.
	ModeCreate Mode = iota
	// ModeUpdate makes every field optional; explicit null is only legal
	// for the nullable image column.
	ModeUpdate
)

// Schema bounds, matching the games table definition.
const (
	TitleMaxLen       = 255
	ImageMaxLen       = 255
	DescriptionMaxLen = 255
	PriceMin          = 1
	PriceMax          = 999999
	OfferMax          = 100
	StockMax          = 255
	RatingMax         = 5
	CompanyIDMax      = 999
	GenresMax         = 3
)

// DateLayout is the calendar form used for release dates on the wire.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD release date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Validate checks a candidate patch against the game schema for the given
// mode. It returns nil, a *apperr.ValidationError listing every failing
// field, or a *apperr.DuplicateAssociationError when the genre set repeats
// an id.
func Validate(p GamePatch, mode Mode) error {
	fields := map[string]string{}

	checkText(fields, p.Title, "title", mode, TitleMaxLen)
	checkText(fields, p.ShortDescription, "short_description", mode, DescriptionMaxLen)
	checkImage(fields, p.Image)
	checkNumber(fields, p.Offer, "offer", mode, 0, OfferMax, "must be between 0 and 100")
	checkNumber(fields, p.Price, "price", mode, PriceMin, PriceMax, "must be between 1 and 999999")
	checkNumber(fields, float64Field(p.Stock), "stock", mode, 0, StockMax, "must be between 0 and 255")
	checkNumber(fields, p.Rating, "rating", mode, 0, RatingMax, "must be between 0 and 5")
	checkID(fields, p.Publisher, "publisher", mode)
	checkID(fields, p.Developer, "developer", mode)
	checkDate(fields, p.ReleaseDate, mode)
	checkGenres(fields, p.Genres, mode)

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}

	if p.Genres.Set && !p.Genres.Null {
		if dup := duplicateIDs(p.Genres.Value); len(dup) > 0 {
			return &apperr.DuplicateAssociationError{GenreIDs: dup}
		}
	}
	return nil
}

func checkText(fields map[string]string, f Field[string], name string, mode Mode, maxLen int) {
	if !f.Set {
		if mode == ModeCreate {
			fields[name] = "is required"
		}
		return
	}
	if f.Null {
		fields[name] = "must not be null"
		return
	}
	if f.Invalid {
		fields[name] = "must be a string"
		return
	}
	if len(f.Value) < 1 || len(f.Value) > maxLen {
		fields[name] = "must be between 1 and 255 characters"
	}
}

func checkImage(fields map[string]string, f Field[string]) {
	// Optional in both modes; explicit null clears back to the default.
	if !f.Set || f.Null {
		return
	}
	if f.Invalid {
		fields["img"] = "must be a string"
		return
	}
	if len(f.Value) < 1 || len(f.Value) > ImageMaxLen {
		fields["img"] = "must be between 1 and 255 characters"
	}
}

func checkNumber(fields map[string]string, f Field[float64], name string, mode Mode, min, max float64, rangeMsg string) {
	if !f.Set {
		if mode == ModeCreate {
			fields[name] = "is required"
		}
		return
	}
	if f.Null {
		fields[name] = "must not be null"
		return
	}
	// ParseFloat accepts "NaN" and "Inf", and NaN slips past any range
	// comparison, so non-finite values are rejected explicitly.
	if f.Invalid || math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		fields[name] = "must be a number"
		return
	}
	if f.Value < min || f.Value > max {
		fields[name] = rangeMsg
	}
}

func checkID(fields map[string]string, f Field[uint], name string, mode Mode) {
	if !f.Set {
		if mode == ModeCreate {
			fields[name] = "is required"
		}
		return
	}
	if f.Null {
		fields[name] = "must not be null"
		return
	}
	if f.Invalid {
		fields[name] = "must be a number"
		return
	}
	if f.Value < 1 || f.Value > CompanyIDMax {
		fields[name] = "must be between 1 and 999"
	}
}

func checkDate(fields map[string]string, f Field[string], mode Mode) {
	if !f.Set {
		if mode == ModeCreate {
			fields["release_date"] = "is required"
		}
		return
	}
	if f.Null {
		fields["release_date"] = "must not be null"
		return
	}
	if f.Invalid {
		fields["release_date"] = "must be a string"
		return
	}
	if _, err := ParseDate(f.Value); err != nil {
		fields["release_date"] = "must be a YYYY-MM-DD date"
	}
}

func checkGenres(fields map[string]string, f Field[[]uint], mode Mode) {
	if !f.Set {
		if mode == ModeCreate {
			fields["genres"] = "is required"
		}
		return
	}
	if f.Null {
		// On update, treated as not supplied: associations are left alone.
		if mode == ModeCreate {
			fields["genres"] = "is required"
		}
		return
	}
	if f.Invalid {
		fields["genres"] = "must be an array of numbers"
		return
	}
	min := 1
	if mode == ModeUpdate {
		min = 0
	}
	if len(f.Value) < min || len(f.Value) > GenresMax {
		fields["genres"] = "must contain between 1 and 3 genre ids"
		return
	}
	for _, id := range f.Value {
		if id < 1 {
			fields["genres"] = "ids must be positive"
			return
		}
	}
}

func duplicateIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	var dup []uint
	for _, id := range ids {
		if seen[id] {
			dup = append(dup, id)
		}
		seen[id] = true
	}
	return dup
}

func float64Field(f Field[int]) Field[float64] {
	return Field[float64]{Set: f.Set, Null: f.Null, Invalid: f.Invalid, Value: float64(f.Value)}
}
