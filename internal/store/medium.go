// Package store layers dot-path addressing over pluggable storage media.
//
// A Medium supplies primitive operations on whole root entries; Adapter
// implements every higher-level dot-path operation purely in terms of
// those primitives. Public adapter methods are total: they never
// propagate an error for malformed input or medium failure, degrading to
// the documented fallback or no-op and emitting a diagnostic instead.
package store

import (
	"context"
	"errors"
)

var (
	// ErrEntryNotFound reports that no root entry exists under a name.
	ErrEntryNotFound = errors.New("root entry not found")
	// ErrParse reports that a stored entry is not valid structured text.
	// Readers treat parse failures as the entry being absent.
	ErrParse = errors.New("stored entry is malformed")
	// ErrMedium reports a failure of the backing medium itself, such as
	// a rejected write.
	ErrMedium = errors.New("storage medium failure")
)

// Medium is the primitive contract a storage substrate must supply.
// Read returns ErrEntryNotFound for absent entries and ErrParse for
// entries that cannot be decoded. Keys reports root-entry names in
// whatever order the medium produces them; no ordering is promised.
type Medium interface {
	Read(ctx context.Context, root string) (any, error)
	Write(ctx context.Context, root string, value any) error
	Delete(ctx context.Context, root string) error
	Keys(ctx context.Context) ([]string, error)

	// All reconstructs a mapping of every root-entry name to its value.
	// Clear empties the entire medium, including entries written by
	// unrelated consumers sharing it.
	All(ctx context.Context) (map[string]any, error)
	Clear(ctx context.Context) error
}

// CountingMedium is a Medium that can report how many root entries it
// currently holds. The in-process memory medium implements it.
type CountingMedium interface {
	Medium
	Len() int
}
