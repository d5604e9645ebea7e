package corestore

// errors.go defines the error taxonomy of the public API.

import "errors"

var (
	// ErrOutsideTransaction is returned when a mutation (object create, field
	// set, remove, or any list mutation) is attempted without an active write
	// transaction.
	ErrOutsideTransaction = errors.New("corestore: mutation outside a write transaction")

	// ErrIndexOutOfRange is returned when a list index argument is outside the
	// valid bounds. The list is left unmodified.
	ErrIndexOutOfRange = errors.New("corestore: list index out of range")

	// ErrAlreadyManaged is returned when attaching an object that is already
	// attached to this store.
	ErrAlreadyManaged = errors.New("corestore: object is already managed by this store")

	// ErrForeignStore is returned when an object or reference originating from
	// a different store is used with this one.
	ErrForeignStore = errors.New("corestore: object belongs to a different store")

	// ErrNilObject is returned when a nil object handle is passed where an
	// object is required.
	ErrNilObject = errors.New("corestore: nil object")

	// ErrUnmanaged is returned when an operation requires a store-resident
	// object but the handle is unmanaged.
	ErrUnmanaged = errors.New("corestore: object is not managed by a store")

	// ErrPermission is returned when a store cannot be opened or deleted
	// because the path is invalid, unwritable, or a directory.
	ErrPermission = errors.New("corestore: permission denied")

	// ErrStoreInUse is returned when deleting a store that still has open
	// handles.
	ErrStoreInUse = errors.New("corestore: store is in use")

	// ErrClosed is returned when operating on a closed store handle.
	ErrClosed = errors.New("corestore: store handle is closed")

	// ErrTxClosed is returned when operating on a committed or cancelled
	// transaction.
	ErrTxClosed = errors.New("corestore: transaction is closed")

	// ErrInvalidated is returned when operating on a handle whose underlying
	// object has been removed from the store.
	ErrInvalidated = errors.New("corestore: object has been removed")

	// ErrWriteLockTimeout is returned when BeginWrite cannot acquire the
	// writer lock within Config.WriteLockTimeout.
	ErrWriteLockTimeout = errors.New("corestore: timed out waiting for write lock")

	// ErrMigrationRequired is returned when the stored schema version differs
	// from the requested one and no migration callback can bridge the gap.
	ErrMigrationRequired = errors.New("corestore: schema migration required")

	// ErrReferenceConsumed is returned when a ThreadSafeReference is resolved
	// a second time.
	ErrReferenceConsumed = errors.New("corestore: thread-safe reference already resolved")

	// ErrUnknownType is returned when an object type name is not in the
	// store's schema.
	ErrUnknownType = errors.New("corestore: unknown object type")

	// ErrUnknownField is returned when a field name is not declared on the
	// object's type.
	ErrUnknownField = errors.New("corestore: unknown field")

	// ErrTypeMismatch is returned when a value's type does not match the
	// declared field type, or a counter operation targets a non-counter
	// field.
	ErrTypeMismatch = errors.New("corestore: value type does not match field type")
)
