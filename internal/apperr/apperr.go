// Package apperr defines the error taxonomy shared by the validation,
// repository and handler layers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNothingToUpdate is returned when an update payload carries no
// recognized fields. Reported instead of silently succeeding.
var ErrNothingToUpdate = errors.New("no values to update")

// ValidationError enumerates every constraint violated by a candidate
// record, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing game or referenced entity. IDs lists
// every missing identifier when more than one was checked.
type NotFoundError struct {
	Entity string
	IDs    []uint
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return e.Entity + " not found"
	}
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, strings.Join(ids, ", "))
}

// DuplicateAssociationError reports genre ids repeated where uniqueness is
// required, whether caught up front or by a store constraint.
type DuplicateAssociationError struct {
	GenreIDs []uint
}

func (e *DuplicateAssociationError) Error() string {
	if len(e.GenreIDs) == 0 {
		return "duplicate genre ids are not allowed"
	}
	ids := make([]string, 0, len(e.GenreIDs))
	for _, id := range e.GenreIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return "duplicate genre ids are not allowed: " + strings.Join(ids, ", ")
}

// StoreError wraps an unexpected failure from the relational store. The
// wrapped detail is for server-side logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
