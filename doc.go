/*
Package corestore provides an embedded, versioned, file-backed object store.

A Store holds typed objects declared by a Schema. Objects carry scalar
fields and ordered list fields of primitive values. All mutations happen
inside a single serialized write transaction per store file; readers pin a
consistent snapshot and are never blocked by the writer. Every commit
publishes a new store version, and registered subscribers receive one
coalesced change set per observed version range when their handle is
refreshed.

# Usage

	store, err := corestore.Open(corestore.Config{
		Path:   "/data/app.store",
		Schema: schema,
	})
	if err != nil { ... }
	defer store.Close()

	tx, err := store.BeginWrite()
	if err != nil { ... }
	obj, err := tx.Create("Person")
	...
	if err := tx.Commit(); err != nil { ... }

# Concurrency

A Store handle is bound to one execution context: its snapshot advances only
through Refresh, BeginWrite, or Commit, and notification callbacks run
synchronously inside those calls. Handles must not be shared across
goroutines without external synchronization; to hand an object or list to
another context, capture a ThreadSafeReference and resolve it against that
context's own handle. Multiple handles (and multiple processes) may open the
same path concurrently; writers are serialized through the store's lock
file.

# Durability

A store is one journal file at a canonical path plus a sibling ".lock"
file. Commits append a checksummed, optionally compressed frame and sync it
before publishing; a crash mid-append leaves a torn tail frame that
subsequent opens ignore, so the prior version stays intact. The next commit
truncates the torn tail and writes in its place.
*/
package corestore
