// Package vfs provides the filesystem helpers corestore needs: exclusive
// lock files for single-writer enforcement and durable sync primitives for
// the journal.
package vfs

import (
	"os"
	"path/filepath"
)

// Exists reports whether name exists.
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// SyncDir syncs the directory containing name so that a freshly created
// file's directory entry is durable.
func SyncDir(name string) error {
	d, err := os.Open(filepath.Dir(name))
	if err != nil {
		return err
	}
	err = d.Sync()
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return err
}
