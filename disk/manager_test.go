package disk

import (
	"os"
	"path/filepath"
	"testing"

	"coredb/page"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	m, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestAllocateWriteReadPage(t *testing.T) {
	m := newTestManager(t)

	id, err := m.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}

	buf := make([]byte, page.PageSize)
	buf[0] = 0xAB
	buf[page.PageSize-1] = 0xCD
	if err := m.WritePage(id, buf); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got := make([]byte, page.PageSize)
	if err := m.ReadPage(id, got); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if got[0] != 0xAB || got[page.PageSize-1] != 0xCD {
		t.Fatalf("read back mismatched bytes")
	}
}

func TestReadUnwrittenPageIsZeroed(t *testing.T) {
	m := newTestManager(t)
	id, err := m.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	buf := make([]byte, page.PageSize)
	if err := m.ReadPage(id, buf); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("expected zeroed byte at %d, got %d", i, b)
		}
	}
}

func TestDeallocateReusesID(t *testing.T) {
	m := newTestManager(t)
	id1, _ := m.AllocatePage()
	if err := m.DeallocatePage(id1); err != nil {
		t.Fatalf("DeallocatePage: %v", err)
	}
	id2, err := m.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if id2 != id1 {
		t.Fatalf("expected reused id %d, got %d", id1, id2)
	}
}

func TestOpenExistingFileResumesNextID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	m1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := m1.AllocatePage(); err != nil {
			t.Fatalf("AllocatePage: %v", err)
		}
	}
	if err := m1.WritePage(2, make([]byte, page.PageSize)); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	m1.Close()

	m2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m2.Close()
	next, err := m2.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if next < 3 {
		t.Fatalf("expected next id >= 3 after reopen, got %d", next)
	}
}

func TestInvalidPageIDRejected(t *testing.T) {
	m := newTestManager(t)
	buf := make([]byte, page.PageSize)
	if err := m.ReadPage(page.InvalidPageID, buf); err == nil {
		t.Fatal("expected error reading invalid page id")
	}
	if err := m.WritePage(page.InvalidPageID, buf); err == nil {
		t.Fatal("expected error writing invalid page id")
	}
	if err := m.DeallocatePage(page.InvalidPageID); err == nil {
		t.Fatal("expected error deallocating invalid page id")
	}
}

func TestWrongSizeBufferRejected(t *testing.T) {
	m := newTestManager(t)
	id, _ := m.AllocatePage()
	if err := m.WritePage(id, make([]byte, 10)); err == nil {
		t.Fatal("expected error for undersized buffer")
	}
	if err := m.ReadPage(id, make([]byte, 10)); err == nil {
		t.Fatal("expected error for undersized buffer")
	}
}

func TestSyncAndCloseSucceed(t *testing.T) {
	dir := t.TempDir()
	m, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := m.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested.db")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to not exist yet")
	}
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to be created: %v", err)
	}
}
