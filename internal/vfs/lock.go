//go:build !windows

// lock.go implements store lock files on Unix systems.
package vfs

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when a lock cannot be acquired within the
// caller's deadline.
var ErrLockTimeout = errors.New("vfs: lock acquisition timed out")

// FileLock is an exclusive advisory lock on a file.
type FileLock struct {
	f *os.File
}

// LockFile acquires an exclusive lock on the named file, creating it if
// needed. A zero timeout blocks until the lock is granted; a positive timeout
// polls until the deadline and then returns ErrLockTimeout.
func LockFile(name string, timeout time.Duration) (*FileLock, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
			_ = f.Close()
			return nil, err
		}
		return &FileLock{f: f}, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &FileLock{f: f}, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) && !errors.Is(err, syscall.EAGAIN) {
			_ = f.Close()
			return nil, err
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, ErrLockTimeout
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TryLockFile acquires the lock without blocking. It returns ErrLockTimeout
// if another holder has it.
func TryLockFile(name string) (*FileLock, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, ErrLockTimeout
		}
		return nil, err
	}
	return &FileLock{f: f}, nil
}

// Unlock releases the lock and closes the underlying file.
func (l *FileLock) Unlock() error {
	// Release the lock (ignore error - file will be closed anyway)
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return l.f.Close()
}
