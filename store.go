package corestore

// store.go implements store lifecycle: open, close, delete, refresh.
//
// All handles to the same canonical path within a process share one
// underlying sharedStore, which caches the latest committed generation and
// tracks the journal offset it was built from. Cross-process commits become
// visible when a handle refreshes and the journal has grown past that
// offset.

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/aalhour/corestore/internal/journal"
	"github.com/aalhour/corestore/internal/logging"
	"github.com/aalhour/corestore/internal/vfs"
)

// SchemaVersionUnset is the schema version a store reports before one is
// explicitly stamped.
const SchemaVersionUnset uint64 = math.MaxUint64

// registry tracks open stores per canonical path within the process, so
// that concurrent opens share state and Delete can refuse while handles
// remain.
var registry = struct {
	mu     sync.Mutex
	stores map[string]*sharedStore
}{stores: make(map[string]*sharedStore)}

// sharedStore is the per-file state shared by all handles in this process.
type sharedStore struct {
	path     string // canonical journal path
	lockPath string

	mu         sync.Mutex
	refs       int
	committed  *generation
	journalEnd int64

	// writerMu serializes write transactions among this process's handles;
	// the flock on lockPath serializes across processes.
	writerMu sync.Mutex

	log logging.Logger
}

// Store is one execution context's handle to a store. It pins a read
// snapshot that advances only through Refresh, BeginWrite, or Commit.
//
// A Store is not safe for concurrent use; hand entities to other contexts
// with ThreadSafeReference.
type Store struct {
	shared  *sharedStore
	cfg     Config
	readGen *generation
	subs    subscriberSet
	tx      *Tx
	closed  bool
}

// Open opens (creating if absent) the store at cfg.Path and runs the
// schema-version migration step before returning. The returned handle's
// snapshot is the latest committed version at open time.
func Open(cfg Config) (*Store, error) {
	path, err := cfg.canonicalPath()
	if err != nil {
		return nil, err
	}
	if cfg.Schema != nil {
		if err := cfg.Schema.validate(); err != nil {
			return nil, err
		}
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrPermission, path)
	}

	registry.mu.Lock()
	shared := registry.stores[path]
	if shared == nil {
		shared = &sharedStore{
			path:      path,
			lockPath:  path + ".lock",
			committed: newGeneration(),
			log:       cfg.logger(),
		}
		if !vfs.Exists(path) {
			if err := journal.Create(path); err != nil {
				registry.mu.Unlock()
				return nil, fmt.Errorf("%w: %v", ErrPermission, err)
			}
			shared.log.Infof("[store] created %s", path)
		}
		if err := shared.catchUp(); err != nil {
			registry.mu.Unlock()
			return nil, err
		}
		registry.stores[path] = shared
	}
	shared.refs++
	registry.mu.Unlock()

	s := &Store{shared: shared, cfg: cfg, readGen: shared.snapshot()}

	if err := s.runMigrationStep(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// snapshot returns the latest committed generation.
func (sh *sharedStore) snapshot() *generation {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.committed
}

// catchUp replays journal frames appended since the last replay, advancing
// the shared committed generation. Callers must not hold sh.mu.
func (sh *sharedStore) catchUp() error {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.catchUpLocked()
}

func (sh *sharedStore) catchUpLocked() error {
	fi, err := os.Stat(sh.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	if fi.Size() <= sh.journalEnd {
		return nil
	}

	r, err := journal.Open(sh.path, sh.journalEnd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	defer func() { _ = r.Close() }()

	ws := newWorkingState(sh.committed)
	replayed := 0
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		ops, err := decodeOps(frame.Payload)
		if err != nil {
			return err
		}
		for i := range ops {
			if err := ws.apply(&ops[i]); err != nil {
				return err
			}
		}
		ws.gen.version = frame.Version
		replayed++
	}
	if replayed > 0 {
		sh.log.Debugf("[journal] replayed %d frame(s) to version %d", replayed, ws.gen.version)
		sh.committed = ws.gen
	}
	sh.journalEnd = r.Offset()
	return nil
}

// end returns the offset of the boundary after the last replayed frame.
// With the write lock held nothing else can append, so this is where the
// next commit frame goes; any bytes past it are a torn tail from a crashed
// writer.
func (sh *sharedStore) end() int64 {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.journalEnd
}

// publish installs gen as the committed generation. Called by Commit with
// the writer lock held.
func (sh *sharedStore) publish(gen *generation, journalEnd int64) {
	sh.mu.Lock()
	sh.committed = gen
	sh.journalEnd = journalEnd
	sh.mu.Unlock()
}

// Version returns the committed store version this handle's snapshot is
// pinned to.
func (s *Store) Version() uint64 {
	return s.readGen.version
}

// SchemaVersion returns the stamped schema version at this handle's
// snapshot, or SchemaVersionUnset.
func (s *Store) SchemaVersion() uint64 {
	return s.readGen.schemaVersion
}

// Refresh advances this handle's snapshot to the latest committed version,
// replaying any frames other processes have appended, and synchronously
// delivers the coalesced notifications for everything that changed since
// the previous snapshot. It is the sole notification delivery trigger for
// a handle that is not committing its own transactions.
//
// Refresh during this handle's own write transaction is a no-op: the
// transaction began at the latest version and holds the writer lock, so
// nothing can have advanced.
func (s *Store) Refresh() error {
	if s.closed {
		return ErrClosed
	}
	if s.tx != nil {
		return nil
	}
	if err := s.shared.catchUp(); err != nil {
		return err
	}
	old := s.readGen
	s.readGen = s.shared.snapshot()
	if s.readGen.version != old.version {
		s.deliver(old, s.readGen)
	}
	return nil
}

// Close releases the handle. Outstanding subscriptions stop delivering; an
// active write transaction is cancelled. Close is idempotent.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tx != nil {
		s.tx.Cancel()
	}
	s.subs = subscriberSet{}

	registry.mu.Lock()
	s.shared.refs--
	if s.shared.refs == 0 {
		delete(registry.stores, s.shared.path)
	}
	registry.mu.Unlock()
	return nil
}

// Delete removes the store file at path. It fails with ErrStoreInUse while
// any handle in this process holds the store open, and with a wrapped
// ErrPermission if another process holds its lock file. Deleting a store
// that does not exist is a no-op.
func Delete(path string) error {
	cfg := Config{Path: path}
	canonical, err := cfg.canonicalPath()
	if err != nil {
		return err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if sh := registry.stores[canonical]; sh != nil && sh.refs > 0 {
		return fmt.Errorf("%w: %s", ErrStoreInUse, canonical)
	}

	if !vfs.Exists(canonical) {
		return nil
	}
	lock, err := vfs.TryLockFile(canonical + ".lock")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(canonical); err != nil {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	_ = os.Remove(canonical + ".lock")
	return nil
}

// Path returns the canonical store path this handle is bound to.
func (s *Store) Path() string {
	return s.shared.path
}
