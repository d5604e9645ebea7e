package corestore

// options.go implements store configuration.

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aalhour/corestore/internal/compress"
	"github.com/aalhour/corestore/internal/logging"
)

// Logger is an alias for the logging.Logger interface.
// This allows users to pass their own logger implementation.
type Logger = logging.Logger

// Compression is an alias for the journal codec type.
type Compression = compress.Codec

// Compression codec constants.
const (
	CompressionNone   = compress.None
	CompressionSnappy = compress.Snappy
	CompressionLZ4    = compress.LZ4
	CompressionZstd   = compress.Zstd
)

// MigrationFunc is invoked during Open when the stored schema version
// differs from the requested one. It runs inside the migration write
// transaction; the store is not reachable by the caller until it returns.
type MigrationFunc func(mig *Migration, oldVersion uint64) error

// Config describes how to open a store.
type Config struct {
	// Path is the store file location. Relative segments are resolved before
	// the path is compared or opened, so two configs naming the same
	// canonical file refer to the same store.
	Path string

	// Schema declares the object types the caller will use. Optional for
	// inspection-only opens.
	Schema *Schema

	// SchemaVersion is the schema version to open at. Zero leaves a fresh
	// store unstamped; such a store reports SchemaVersionUnset until opened
	// with an explicit version.
	SchemaVersion uint64

	// Migration bridges the stored schema version to SchemaVersion. Required
	// when opening a non-empty store whose stamped version differs.
	Migration MigrationFunc

	// Compression selects the journal frame codec for commits made through
	// this handle.
	Compression Compression

	// WriteLockTimeout bounds how long BeginWrite waits for the writer lock.
	// Zero waits indefinitely.
	WriteLockTimeout time.Duration

	// Logger receives diagnostic output. Defaults to a no-op logger.
	Logger Logger
}

// canonicalPath resolves cfg.Path to an absolute, symlink-free path. The
// file itself may not exist yet; its directory must.
func (c *Config) canonicalPath() (string, error) {
	if c.Path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPermission)
	}
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPermission, err)
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// Equal reports whether two configs target the same store file.
func (c *Config) Equal(o *Config) bool {
	a, err1 := c.canonicalPath()
	b, err2 := o.canonicalPath()
	if err1 != nil || err2 != nil {
		return false
	}
	return a == b
}

func (c *Config) logger() logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard
}
