// Package persistence provides the concrete storage media behind the
// store adapters: a persistent file directory, PostgreSQL and S3
// alternatives, a session-scoped TTL map, and a plain in-process map.
//
// Byte-string media implement StringMedium and are wrapped by Codec,
// which owns the JSON (de)serialization of root entries. The memory
// medium implements store.Medium directly and holds live values.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nestkv/nestkv/internal/store"
)

// StringMedium is a raw byte-string substrate: each root entry is stored
// as one opaque string document. Load reports found=false for absent
// entries. Remove of an absent entry is a no-op.
type StringMedium interface {
	Load(ctx context.Context, root string) (doc string, found bool, err error)
	Store(ctx context.Context, root string, doc string) error
	Remove(ctx context.Context, root string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Codec adapts a StringMedium to the store.Medium contract by encoding
// root entries as JSON documents. JSON round-trips mappings, arrays,
// strings, numbers, booleans, and null losslessly; numbers decode as
// float64.
type Codec struct {
	m StringMedium
}

// NewCodec wraps a byte-string medium with the JSON codec.
func NewCodec(m StringMedium) *Codec {
	return &Codec{m: m}
}

// Read loads and decodes a root entry. A document that is not valid JSON
// yields store.ErrParse, which readers treat as the entry being absent.
func (c *Codec) Read(ctx context.Context, root string) (any, error) {
	doc, found, err := c.m.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("%w: load %q: %v", store.ErrMedium, root, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", store.ErrEntryNotFound, root)
	}

	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", store.ErrParse, root, err)
	}
	return v, nil
}

// Write encodes value and stores the document under root.
func (c *Codec) Write(ctx context.Context, root string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", root, err)
	}
	if err := c.m.Store(ctx, root, string(data)); err != nil {
		return fmt.Errorf("%w: store %q: %v", store.ErrMedium, root, err)
	}
	return nil
}

// Delete removes the document under root.
func (c *Codec) Delete(ctx context.Context, root string) error {
	if err := c.m.Remove(ctx, root); err != nil {
		return fmt.Errorf("%w: remove %q: %v", store.ErrMedium, root, err)
	}
	return nil
}

// Keys returns all root-entry names the medium reports.
func (c *Codec) Keys(ctx context.Context) ([]string, error) {
	return c.m.Keys(ctx)
}

// All reconstructs every root entry. Entries whose documents fail to
// parse map to nil rather than aborting the reconstruction.
func (c *Codec) All(ctx context.Context) (map[string]any, error) {
	keys, err := c.m.Keys(ctx)
	if err != nil {
		return nil, err
	}

	all := make(map[string]any, len(keys))
	for _, root := range keys {
		doc, found, err := c.m.Load(ctx, root)
		if err != nil || !found {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			all[root] = nil
			continue
		}
		all[root] = v
	}
	return all, nil
}

// Clear empties the entire underlying medium.
func (c *Codec) Clear(ctx context.Context) error {
	return c.m.Clear(ctx)
}
