package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Field is one entry of a tagged patch: absent, explicitly null, or set to
// a decoded value. Invalid marks a present value that could not be decoded
// into the field's type; decoding never aborts the whole payload so that
// every failing field can be reported at once.
type Field[T any] struct {
	Set     bool
	Null    bool
	Invalid bool
	Value   T
}

// SetTo returns a field explicitly set to v.
func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		f.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err == nil {
		return nil
	}
	// Numeric fields may arrive as quoted strings from form-based clients.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &f.Value); err == nil {
			return nil
		}
	}
	f.Invalid = true
	return nil
}

// GamePatch is a tagged partial game record. A zero GamePatch has every
// field unset; json decoding or FromForm marks the supplied ones.
type GamePatch struct {
	Title            Field[string]  `json:"title"`
	Image            Field[string]  `json:"img"`
	Offer            Field[float64] `json:"offer"`
	Price            Field[float64] `json:"price"`
	Stock            Field[int]     `json:"stock"`
	Rating           Field[float64] `json:"rating"`
	ReleaseDate      Field[string]  `json:"release_date"`
	ShortDescription Field[string]  `json:"short_description"`
	Publisher        Field[uint]    `json:"publisher"`
	Developer        Field[uint]    `json:"developer"`
	Genres           Field[[]uint]  `json:"genres"`
}

// Empty reports whether the patch carries nothing that could change the
// record. A null genre set is ignored rather than applied, so it counts
// as absent here; a null image is a real write (it clears the column).
func (p GamePatch) Empty() bool {
	return !p.Title.Set && !p.Image.Set && !p.Offer.Set && !p.Price.Set &&
		!p.Stock.Set && !p.Rating.Set && !p.ReleaseDate.Set &&
		!p.ShortDescription.Set && !p.Publisher.Set && !p.Developer.Set &&
		!(p.Genres.Set && !p.Genres.Null)
}

// FromForm builds a patch from multipart form values. Presence follows the
// form keys; numeric values are coerced from their string representation.
// Genres accept repeated keys or a single comma-separated value.
func FromForm(values map[string][]string) GamePatch {
	var p GamePatch
	p.Title = formString(values, "title")
	p.Image = formString(values, "img")
	p.Offer = formFloat(values, "offer")
	p.Price = formFloat(values, "price")
	p.Stock = formInt(values, "stock")
	p.Rating = formFloat(values, "rating")
	p.ReleaseDate = formString(values, "release_date")
	p.ShortDescription = formString(values, "short_description")
	p.Publisher = formUint(values, "publisher")
	p.Developer = formUint(values, "developer")
	p.Genres = formUintList(values, "genres")
	return p
}

func formString(values map[string][]string, key string) Field[string] {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return Field[string]{}
	}
	return SetTo(v[0])
}

func formFloat(values map[string][]string, key string) Field[float64] {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return Field[float64]{}
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v[0]), 64)
	if err != nil {
		return Field[float64]{Set: true, Invalid: true}
	}
	return SetTo(parsed)
}

func formInt(values map[string][]string, key string) Field[int] {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return Field[int]{}
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v[0]))
	if err != nil {
		return Field[int]{Set: true, Invalid: true}
	}
	return SetTo(parsed)
}

func formUint(values map[string][]string, key string) Field[uint] {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return Field[uint]{}
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(v[0]), 10, 32)
	if err != nil {
		return Field[uint]{Set: true, Invalid: true}
	}
	return SetTo(uint(parsed))
}

func formUintList(values map[string][]string, key string) Field[[]uint] {
	v, ok := values[key]
	if !ok {
		return Field[[]uint]{}
	}
	ids := make([]uint, 0, len(v))
	for _, raw := range v {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parsed, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return Field[[]uint]{Set: true, Invalid: true}
			}
			ids = append(ids, uint(parsed))
		}
	}
	return SetTo(ids)
}
