package buffer

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"coredb/page"
)

// Stats is operational visibility into the pool's frame occupancy and hit
// rate, kept from the teacher's BufferPoolStats
// (storage_engine/bufferpool/structs.go) even though spec.md's distilled
// public surface doesn't name it — useful diagnostics the spec doesn't
// exclude either.
type Stats struct {
	Capacity    int
	FreeFrames  int
	PinnedPages int
	DirtyPages  int
	Hits        uint64
	Misses      uint64
}

// HitRate returns the fraction of FetchPage calls that found the page
// already resident, or 0 if there have been no fetches yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// String renders a human-readable summary, using humanize.Bytes for the
// pool's total resident footprint, as the CLI inspector prints it.
func (s Stats) String() string {
	bytes := humanize.Bytes(uint64(s.Capacity) * page.PageSize)
	return fmt.Sprintf("capacity=%d (%s) free=%d pinned=%d dirty=%d hit_rate=%.2f%%",
		s.Capacity, bytes, s.FreeFrames, s.PinnedPages, s.DirtyPages, s.HitRate()*100)
}

// Stats snapshots the pool's current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Capacity:   len(p.frames),
		FreeFrames: len(p.freeList),
		Hits:       p.hits,
		Misses:     p.misses,
	}
	for _, f := range p.frames {
		if f.ID == page.InvalidPageID {
			continue
		}
		if f.PinCount > 0 {
			s.PinnedPages++
		}
		if f.IsDirty {
			s.DirtyPages++
		}
	}
	return s
}
