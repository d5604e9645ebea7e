package corestore

// transaction.go implements write transactions.
//
// Exactly one write transaction is active per store file at a time: handles
// within the process serialize on the shared writer mutex, and processes
// serialize on the store's flock'd lock file. A transaction owns a
// copy-on-write overlay of the committed generation; Commit appends one
// journal frame and publishes the overlay atomically, Cancel discards it.

import (
	"errors"
	"fmt"
	"time"

	"github.com/aalhour/corestore/internal/journal"
	"github.com/aalhour/corestore/internal/vfs"
)

// ErrNestedTransaction is returned when BeginWrite is called while this
// handle already has an active write transaction.
var ErrNestedTransaction = errors.New("corestore: a write transaction is already active on this handle")

// Tx is an active write transaction. All mutations made through it are
// invisible to other handles until Commit publishes them.
type Tx struct {
	store  *Store
	ws     *workingState
	ops    []op
	flock  *vfs.FileLock
	closed bool
}

// BeginWrite starts a write transaction, blocking until the writer lock is
// granted (bounded by Config.WriteLockTimeout). Beginning a transaction
// implicitly refreshes the handle, delivering any pending notifications
// before the transaction's snapshot is fixed.
func (s *Store) BeginWrite() (*Tx, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.tx != nil {
		return nil, ErrNestedTransaction
	}

	if !acquireMutex(&s.shared.writerMu, s.cfg.WriteLockTimeout) {
		return nil, ErrWriteLockTimeout
	}
	flock, err := vfs.LockFile(s.shared.lockPath, s.cfg.WriteLockTimeout)
	if err != nil {
		s.shared.writerMu.Unlock()
		if errors.Is(err, vfs.ErrLockTimeout) {
			return nil, ErrWriteLockTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrPermission, err)
	}

	// With the write lock held no other writer can commit, so catching up
	// here pins the transaction to the true latest version.
	if err := s.shared.catchUp(); err != nil {
		_ = flock.Unlock()
		s.shared.writerMu.Unlock()
		return nil, err
	}
	old := s.readGen
	s.readGen = s.shared.snapshot()
	if s.readGen.version != old.version {
		s.deliver(old, s.readGen)
	}

	tx := &Tx{
		store: s,
		ws:    newWorkingState(s.readGen),
		flock: flock,
	}
	s.tx = tx
	return tx, nil
}

// Commit durably appends the transaction's operations as one journal frame
// and publishes the new version. Commit is irreversible; after it returns,
// the transaction is closed and this handle's snapshot (and its
// subscribers) are at the new version.
func (tx *Tx) Commit() error {
	if tx.closed {
		return ErrTxClosed
	}
	s := tx.store

	newVersion := tx.ws.gen.version + 1
	payload := encodeOps(tx.ops)
	end, err := journal.Append(s.shared.path, s.shared.end(), newVersion, s.cfg.Compression, payload)
	if err != nil {
		// The frame may be torn on disk; readers skip it. The overlay is
		// unpublishable, so the transaction rolls back.
		tx.release()
		return err
	}
	tx.ws.gen.version = newVersion
	s.shared.publish(tx.ws.gen, end)
	s.shared.log.Debugf("[txn] committed version %d (%d op(s))", newVersion, len(tx.ops))

	old := s.readGen
	s.readGen = tx.ws.gen
	tx.release()
	s.deliver(old, s.readGen)
	return nil
}

// Cancel discards the transaction, leaving the prior committed version
// intact. Cancel after Commit or a second Cancel is a no-op.
func (tx *Tx) Cancel() {
	if tx.closed {
		return
	}
	tx.release()
}

// release closes the transaction and returns the writer locks.
func (tx *Tx) release() {
	tx.closed = true
	tx.store.tx = nil
	_ = tx.flock.Unlock()
	tx.store.shared.writerMu.Unlock()
}

// push validates nothing; it applies an already-validated op to the overlay
// and records it for the commit frame.
func (tx *Tx) push(o op) error {
	if err := tx.ws.apply(&o); err != nil {
		return err
	}
	tx.ops = append(tx.ops, o)
	return nil
}

// Create instantiates a new object of the named type inside the
// transaction and returns a live handle to it.
func (tx *Tx) Create(typeName string) (*Object, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if err := tx.store.checkType(typeName); err != nil {
		return nil, err
	}
	id := tx.ws.allocID()
	if err := tx.push(op{kind: opCreate, typ: typeName, id: id}); err != nil {
		return nil, err
	}
	return &Object{store: tx.store, typ: typeName, id: id}, nil
}

// Add attaches an unmanaged object (and the contents of its list fields)
// to the store. After Add returns, the handle is live and further mutation
// requires an active write transaction.
func (tx *Tx) Add(obj *Object) error {
	if tx.closed {
		return ErrTxClosed
	}
	if obj == nil {
		return ErrNilObject
	}
	if obj.store != nil {
		if obj.store.shared == tx.store.shared {
			return ErrAlreadyManaged
		}
		return ErrForeignStore
	}
	if err := tx.store.checkType(obj.typ); err != nil {
		return err
	}

	id := tx.ws.allocID()
	if err := tx.push(op{kind: opCreate, typ: obj.typ, id: id}); err != nil {
		return err
	}
	for name, v := range obj.local.fields {
		if err := tx.push(op{kind: opSetField, typ: obj.typ, id: id, field: name, val: v}); err != nil {
			return err
		}
	}
	for name, ls := range obj.local.lists {
		for i, v := range ls.vals {
			o := op{
				kind:  opListInsert,
				typ:   obj.typ,
				id:    id,
				field: name,
				index: i,
				slot:  tx.ws.allocID(),
				val:   v,
			}
			if err := tx.push(o); err != nil {
				return err
			}
		}
	}

	obj.store = tx.store
	obj.id = id
	obj.local = nil
	return nil
}

// Remove deletes a managed object from the store. The handle (and every
// other handle to the same object) becomes invalid; subsequent operations
// on it fail with ErrInvalidated.
func (tx *Tx) Remove(obj *Object) error {
	if tx.closed {
		return ErrTxClosed
	}
	if obj == nil {
		return ErrNilObject
	}
	if obj.store == nil {
		return ErrUnmanaged
	}
	if obj.store.shared != tx.store.shared {
		return ErrForeignStore
	}
	if tx.ws.gen.lookup(obj.typ, obj.id) == nil {
		return ErrInvalidated
	}
	return tx.push(op{kind: opRemoveObject, typ: obj.typ, id: obj.id})
}

// All returns the objects of the named type as seen by the transaction,
// including its own uncommitted changes.
func (tx *Tx) All(typeName string) (*Results, error) {
	if tx.closed {
		return nil, ErrTxClosed
	}
	if err := tx.store.checkType(typeName); err != nil {
		return nil, err
	}
	return &Results{store: tx.store, typ: typeName, gen: tx.ws.gen}, nil
}

// checkType validates a type name against the handle's declared schema.
// Handles opened without a schema accept any type name.
func (s *Store) checkType(typeName string) error {
	if typeName == "" {
		return ErrUnknownType
	}
	if s.cfg.Schema != nil && s.cfg.Schema.Object(typeName) == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return nil
}

// acquireMutex locks mu, giving up after timeout when timeout > 0.
func acquireMutex(mu interface {
	Lock()
	TryLock() bool
}, timeout time.Duration) bool {
	if timeout <= 0 {
		mu.Lock()
		return true
	}
	deadline := time.Now().Add(timeout)
	for {
		if mu.TryLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}
