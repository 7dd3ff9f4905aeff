package lockfile

import (
	"path/filepath"
	"testing"
)

func TestTryLockExclusiveWithinProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.lock")

	first := New(path)
	ok, err := first.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !ok {
		t.Fatalf("expected first TryLock to succeed")
	}
	defer first.Unlock()

	second := New(path)
	ok, err = second.TryLock()
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if ok {
		t.Fatalf("expected second TryLock to fail while first holds the lock")
	}
}

func TestUnlockReleasesForNextHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.lock")

	first := New(path)
	if _, err := first.TryLock(); err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	second := New(path)
	ok, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock after unlock: %v", err)
	}
	if !ok {
		t.Fatalf("expected lock to be acquirable after release")
	}
	second.Unlock()
}
