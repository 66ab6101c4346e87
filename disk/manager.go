// Package disk is the on-disk half of the external DiskManager collaborator:
// a single paged file with a page id allocator. It is deliberately simpler
// than the teacher's multi-file, catalog-driven disk_manager (which
// multiplexes many heap/index files behind one fileID scheme) because this
// module's buffer pool and B+tree each own exactly one paged file, exactly
// as spec.md's external-interface section describes ReadPage/WritePage/
// AllocatePage/DeallocatePage.
package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"coredb/page"
)

// Manager reads and writes fixed-size pages of a single backing file and
// hands out page ids. Grounded on the teacher's FileDescriptor (a
// *os.File plus a next-id counter under a mutex), generalized with a
// free list so DeallocatePage'd ids can be reused — the teacher's disk
// manager never reuses ids because catalog-assigned files never shrink;
// spec.md's contract implies the layer above may want ids back.
type Manager struct {
	mu       sync.Mutex
	file     *os.File
	nextID   page.PageID
	freeList []page.PageID
}

// Open opens or creates path as the backing file for a Manager.
func Open(path string) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}
	nextID := page.PageID(info.Size() / page.PageSize)
	return &Manager{file: f, nextID: nextID}, nil
}

// ReadPage fills buf (which must be page.PageSize bytes) with the on-disk
// contents of id. Reading past end-of-file (a page that was allocated but
// never written) yields a zeroed buffer, matching a freshly zeroed frame.
func (m *Manager) ReadPage(id page.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return fmt.Errorf("disk: buffer must be %d bytes, got %d", page.PageSize, len(buf))
	}
	if id == page.InvalidPageID {
		return fmt.Errorf("disk: ReadPage: invalid page id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	off := int64(id) * page.PageSize
	n, err := m.file.ReadAt(buf, off)
	if n < len(buf) {
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("disk: read page %d: %w", id, err)
	}
	return nil
}

// WritePage persists buf (page.PageSize bytes) at id's offset.
func (m *Manager) WritePage(id page.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return fmt.Errorf("disk: buffer must be %d bytes, got %d", page.PageSize, len(buf))
	}
	if id == page.InvalidPageID {
		return fmt.Errorf("disk: WritePage: invalid page id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	off := int64(id) * page.PageSize
	if _, err := m.file.WriteAt(buf, off); err != nil {
		return fmt.Errorf("disk: write page %d: %w", id, err)
	}
	return nil
}

// AllocatePage returns a fresh page id, reusing a previously deallocated
// one if the free list has any.
func (m *Manager) AllocatePage() (page.PageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.freeList); n > 0 {
		id := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		return id, nil
	}
	id := m.nextID
	m.nextID++
	return id, nil
}

// DeallocatePage marks id for reuse by a future AllocatePage. It does not
// truncate the file or zero the page's on-disk bytes; the buffer pool
// re-zeroes a frame's memory copy when it later reissues the id via
// NewPage.
func (m *Manager) DeallocatePage(id page.PageID) error {
	if id == page.InvalidPageID {
		return fmt.Errorf("disk: DeallocatePage: invalid page id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freeList = append(m.freeList, id)
	return nil
}

// Sync flushes the backing file to stable storage.
func (m *Manager) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("disk: sync: %w", err)
	}
	return nil
}

// Close releases the backing file descriptor.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.file.Close(); err != nil {
		return fmt.Errorf("disk: close: %w", err)
	}
	return nil
}
