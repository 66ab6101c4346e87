// Package buffer implements the buffer pool manager: a fixed array of
// frames fronting a disk.Manager, using hash.ExtendibleHash as its page
// table and replacer.Replacer for eviction candidates. Grounded closely
// on storage_engine/bufferpool/bufferpool.go's FetchPage/UnpinPage/
// FlushPage/DeletePage/NewPage, rebuilt per spec.md §4.3's precise
// contract (the teacher uses a plain Go map and an accessOrder slice
// where this module uses the two purpose-built structures above).
package buffer

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"coredb/config"
	"coredb/disk"
	"coredb/hash"
	"coredb/page"
	"coredb/replacer"
)

// ErrOutOfMemory is returned when every frame is pinned and no victim can
// be produced, matching spec.md §7's "resource exhaustion" error kind.
var ErrOutOfMemory = fmt.Errorf("buffer: out of memory (all frames pinned)")

// Pool owns a fixed set of frames and mediates every access to them.
type Pool struct {
	mu sync.Mutex

	disk *disk.Manager
	log  *logrus.Logger

	frames    []*page.Frame
	freeList  []*page.Frame
	pageTable *hash.ExtendibleHash[page.PageID, *page.Frame]
	repl      *replacer.Replacer[page.PageID]

	hits   uint64
	misses uint64
}

// New builds a Pool of opts.PoolSize frames backed by dm.
func New(opts config.Options, dm *disk.Manager) *Pool {
	frames := make([]*page.Frame, opts.PoolSize)
	freeList := make([]*page.Frame, opts.PoolSize)
	for i := range frames {
		frames[i] = page.NewFrame()
		freeList[i] = frames[i]
	}
	hasher := hash.Uint32Hasher(func(id page.PageID) int32 { return int32(id) })
	return &Pool{
		disk:      dm,
		log:       opts.Logger,
		frames:    frames,
		freeList:  freeList,
		pageTable: hash.New[page.PageID, *page.Frame](opts.BucketCapacity, hasher, opts.Logger),
		repl:      replacer.New[page.PageID](),
	}
}

// FetchPage pins and returns the frame holding id, loading it from disk if
// it isn't already resident.
func (p *Pool) FetchPage(id page.PageID) (*page.Frame, error) {
	if id == page.InvalidPageID {
		return nil, fmt.Errorf("buffer: FetchPage: invalid page id")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.pageTable.Find(id); ok {
		f.PinCount++
		p.hits++
		if f.PinCount == 1 {
			p.repl.Erase(id)
		}
		if p.log != nil {
			p.log.WithField("page_id", id).Debug("buffer: fetch hit")
		}
		return f, nil
	}

	p.misses++
	f, err := p.acquireVictim()
	if err != nil {
		return nil, err
	}
	f.Reset()
	f.ID = id
	f.PinCount = 1
	if err := p.disk.ReadPage(id, f.Data); err != nil {
		return nil, fmt.Errorf("buffer: fetch page %d: %w", id, err)
	}
	p.pageTable.Insert(id, f)
	if p.log != nil {
		p.log.WithField("page_id", id).Debug("buffer: fetch miss, loaded from disk")
	}
	return f, nil
}

// UnpinPage decrements id's pin count, ORing in isDirty. It reports false
// if id isn't resident or its pin count is already zero.
func (p *Pool) UnpinPage(id page.PageID, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.pageTable.Find(id)
	if !ok || f.PinCount == 0 {
		return false
	}
	f.PinCount--
	if isDirty {
		f.IsDirty = true
	}
	if f.PinCount == 0 {
		p.repl.Insert(id)
	}
	return true
}

// FlushPage writes id's bytes to disk unconditionally, reporting whether
// id is resident and the write succeeded. The dirty flag is left set, per spec.md §4.3: a repeat
// write on eventual eviction is idempotent.
func (p *Pool) FlushPage(id page.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.pageTable.Find(id)
	if !ok {
		return false
	}
	if err := p.disk.WritePage(id, f.Data); err != nil {
		if p.log != nil {
			p.log.WithError(err).WithField("page_id", id).Warn("buffer: flush failed")
		}
		return false
	}
	return true
}

// FlushAllPages flushes every resident frame, ignoring individual
// failures beyond logging them.
func (p *Pool) FlushAllPages() {
	p.mu.Lock()
	ids := make([]page.PageID, 0, len(p.frames))
	for _, f := range p.frames {
		if f.ID != page.InvalidPageID {
			ids = append(ids, f.ID)
		}
	}
	p.mu.Unlock()
	for _, id := range ids {
		p.FlushPage(id)
	}
}

// DeletePage removes id from the pool and asks the disk manager to
// reclaim its id. Fails if id is resident and still pinned.
func (p *Pool) DeletePage(id page.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.pageTable.Find(id); ok {
		if f.PinCount > 0 {
			return false
		}
		p.pageTable.Remove(id)
		p.repl.Erase(id)
		f.Reset()
		p.freeList = append(p.freeList, f)
	}
	if err := p.disk.DeallocatePage(id); err != nil {
		if p.log != nil {
			p.log.WithError(err).WithField("page_id", id).Warn("buffer: deallocate failed")
		}
		return false
	}
	return true
}

// NewPage allocates a fresh page id and returns its pinned, zeroed frame.
func (p *Pool) NewPage() (*page.Frame, page.PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.acquireVictim()
	if err != nil {
		return nil, page.InvalidPageID, err
	}
	id, err := p.disk.AllocatePage()
	if err != nil {
		p.freeList = append(p.freeList, f)
		return nil, page.InvalidPageID, fmt.Errorf("buffer: allocate page: %w", err)
	}
	f.Reset()
	f.ID = id
	f.PinCount = 1
	p.pageTable.Insert(id, f)
	if p.log != nil {
		p.log.WithField("page_id", id).Debug("buffer: new page")
	}
	return f, id, nil
}

// acquireVictim returns a frame ready for reuse: from the free list if
// one is available, else the replacer's least-recently-used unpinned
// frame (written back first if dirty), else ErrOutOfMemory. Must be
// called with p.mu held.
func (p *Pool) acquireVictim() (*page.Frame, error) {
	if n := len(p.freeList); n > 0 {
		f := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return f, nil
	}
	victimID, ok := p.repl.Victim()
	if !ok {
		if p.log != nil {
			p.log.Warn("buffer: pool exhausted, no evictable frame")
		}
		return nil, ErrOutOfMemory
	}
	f, ok := p.pageTable.Find(victimID)
	if !ok {
		return nil, fmt.Errorf("buffer: replacer named untracked page %d", victimID)
	}
	if f.IsDirty {
		if err := p.disk.WritePage(f.ID, f.Data); err != nil {
			return nil, fmt.Errorf("buffer: evict page %d: %w", f.ID, err)
		}
	}
	p.pageTable.Remove(victimID)
	if p.log != nil {
		p.log.WithField("page_id", victimID).Info("buffer: evicted")
	}
	return f, nil
}
