package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLock_LockUnlock(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir)

	if err := fl.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	// Unlocking twice is a no-op
	if err := fl.Unlock(); err != nil {
		t.Errorf("second Unlock() error = %v", err)
	}
}

func TestFileLock_TryLockContended(t *testing.T) {
	dir := t.TempDir()
	holder := NewFileLock(dir)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	other := NewFileLock(dir)
	ok, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if ok {
		t.Fatal("TryLock() should fail while another descriptor holds the lock")
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	ok, err = other.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() after release = %v, %v", ok, err)
	}
	_ = other.Unlock()
}

func TestFileStore_ReleasesLockBetweenCalls(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := s.ListTasks(testContext(t), ""); err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}

	fl := NewFileLock(dir)
	ok, err := fl.TryLock()
	if err != nil || !ok {
		t.Fatalf("lock should be free after an operation: %v, %v", ok, err)
	}
	_ = fl.Unlock()
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
