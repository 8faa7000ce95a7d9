// Package cache stores encoded contact sheets between runs.
//
// Re-stitching an unchanged directory with unchanged options produces the
// same bytes, so a run can skip decoding and compositing entirely when the
// sheet is already cached. Keys are derived from a fingerprint of every input
// file (name, size, modification time) and all options that affect the
// output; see [Keyer].
//
// Three backends implement [Cache]:
//   - [FileCache]: entries under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for build farms
//   - [NullCache]: never stores anything (caching disabled)
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a cached sheet stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// InputFingerprint identifies one source file without reading its pixels.
type InputFingerprint struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mtime"` // UnixNano
}

// SheetKeyOpts holds every option that changes the encoded sheet.
type SheetKeyOpts struct {
	Max        int    `json:"max"`
	Direction  string `json:"direction"`
	Format     string `json:"format"`
	Quality    int    `json:"quality,omitempty"`
	Mismatch   string `json:"mismatch,omitempty"`
	Background string `json:"background,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SheetKey returns the key of the sheet built from inputs (in placement
	// order) with opts.
	SheetKey(inputs []InputFingerprint, opts SheetKeyOpts) string
}

// DefaultKeyer hashes inputs and options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SheetKey implements Keyer.
func (DefaultKeyer) SheetKey(inputs []InputFingerprint, opts SheetKeyOpts) string {
	return hashKey("sheet", inputs, opts)
}
