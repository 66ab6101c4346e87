package page

// LeafPage is a view over a frame's raw bytes as a B+tree leaf: a header
// (see LeafHeaderSize) followed by a contiguous array of fixed-width
// (key, value) pairs. KeySize and ValSize are supplied by the caller
// (the tree) since the page itself carries no type information beyond
// its header, per spec.md's "raw reinterpretation" re-architecture
// guidance — the page never carries a codec, it just knows two widths.
type LeafPage struct {
	header
	KeySize int
	ValSize int
}

// NewLeafPage wraps buf as a LeafPage. buf must be the frame's full
// PageSize data slice.
func NewLeafPage(buf []byte, keySize, valSize int) LeafPage {
	return LeafPage{header: header{Buf: buf}, KeySize: keySize, ValSize: valSize}
}

func (p LeafPage) stride() int { return p.KeySize + p.ValSize }

func (p LeafPage) offsetOf(i int) int { return LeafHeaderSize + i*p.stride() }

// Init sets up an empty leaf with the given identity, matching
// b_plus_tree_leaf_page.cpp's Init.
func (p LeafPage) Init(pageID, parentID PageID) {
	p.SetPageType(PageTypeLeaf)
	p.SetSize(0)
	p.SetPageID(pageID)
	p.SetParentPageID(parentID)
	p.SetNextPageID(InvalidPageID)
	p.SetMaxSize((PageSize - LeafHeaderSize) / p.stride())
}

func (p LeafPage) NextPageID() PageID {
	return PageID(int32(le32(p.Buf[offNextPageID:])))
}

func (p LeafPage) SetNextPageID(id PageID) {
	putLE32(p.Buf[offNextPageID:], int32(id))
}

func (p LeafPage) KeyAt(i int) []byte {
	off := p.offsetOf(i)
	return p.Buf[off : off+p.KeySize]
}

func (p LeafPage) ValueAt(i int) []byte {
	off := p.offsetOf(i) + p.KeySize
	return p.Buf[off : off+p.ValSize]
}

func (p LeafPage) SetKeyAt(i int, key []byte)   { copy(p.KeyAt(i), key) }
func (p LeafPage) SetValueAt(i int, val []byte) { copy(p.ValueAt(i), val) }

func (p LeafPage) setPairAt(i int, key, val []byte) {
	p.SetKeyAt(i, key)
	p.SetValueAt(i, val)
}

func (p LeafPage) copyPairFrom(dst int, src LeafPage, srcIdx int) {
	p.SetKeyAt(dst, src.KeyAt(srcIdx))
	p.SetValueAt(dst, src.ValueAt(srcIdx))
}

// KeyIndex returns the first index i with key[i] >= key, or Size() if no
// such index exists. Used by iterator positioning (spec.md §4.4.5) and by
// Insert, Lookup and RemoveAndDeleteRecord. This is a safe rewrite of the original's
// KeyIndex, which returned -1 on "not found" and let callers index
// array[-1] — undefined behavior in C++ that Go cannot and should not
// reproduce; returning Size() lets every caller bounds-check uniformly.
func (p LeafPage) KeyIndex(key []byte, cmp Comparator) int {
	n := p.Size()
	for i := 0; i < n; i++ {
		if cmp(p.KeyAt(i), key) >= 0 {
			return i
		}
	}
	return n
}

// GetItem returns the (key, value) pair at index, per
// b_plus_tree_leaf_page.cpp's GetItem.
func (p LeafPage) GetItem(index int) (key, value []byte) {
	return p.KeyAt(index), p.ValueAt(index)
}

// Insert places (key, value) in sorted order. Returns the leaf's size
// after insertion. A key already present leaves the leaf unchanged. The
// caller (bptree.Tree) is responsible for checking Size() < MaxSize()
// first, and checks for duplicates itself before calling — mirroring
// InsertIntoLeaf's split between "does the key exist" and "insert" in the
// original.
func (p LeafPage) Insert(key, value []byte, cmp Comparator) int {
	n := p.Size()
	if n == 0 {
		p.setPairAt(0, key, value)
		p.SetSize(1)
		return 1
	}
	idx := p.KeyIndex(key, cmp)
	if idx < n && cmp(p.KeyAt(idx), key) == 0 {
		return n
	}
	for i := n; i > idx; i-- {
		p.copyPairFrom(i, p, i-1)
	}
	p.setPairAt(idx, key, value)
	p.SetSize(n + 1)
	return n + 1
}

// Lookup reports whether key is present and, if so, its value.
func (p LeafPage) Lookup(key []byte, cmp Comparator) (value []byte, ok bool) {
	idx := p.KeyIndex(key, cmp)
	if idx < p.Size() && cmp(p.KeyAt(idx), key) == 0 {
		return p.ValueAt(idx), true
	}
	return nil, false
}

// RemoveAndDeleteRecord deletes key if present, shifting later entries
// left, and returns the size after deletion.
func (p LeafPage) RemoveAndDeleteRecord(key []byte, cmp Comparator) int {
	idx := p.KeyIndex(key, cmp)
	n := p.Size()
	if idx >= n || cmp(p.KeyAt(idx), key) != 0 {
		return n
	}
	for i := idx + 1; i < n; i++ {
		p.copyPairFrom(i-1, p, i)
	}
	p.SetSize(n - 1)
	return n - 1
}

// MoveHalfTo splits this leaf, moving its upper half into recipient. The
// left side keeps floor(size/2) entries, matching spec.md's boundary
// scenario #2 convention.
func (p LeafPage) MoveHalfTo(recipient LeafPage) {
	n := p.Size()
	half := n / 2
	recipient.copyHalfFrom(p, half, n-half)
	p.SetSize(half)
}

func (p LeafPage) copyHalfFrom(src LeafPage, start, count int) {
	for i := 0; i < count; i++ {
		p.copyPairFrom(i, src, start+i)
	}
	p.SetSize(count)
}

// MoveAllTo merges this (right) leaf into recipient (left), during
// Coalesce, and links recipient's next pointer past this leaf.
func (p LeafPage) MoveAllTo(recipient LeafPage) {
	base := recipient.Size()
	n := p.Size()
	for i := 0; i < n; i++ {
		recipient.copyPairFrom(base+i, p, i)
	}
	recipient.SetSize(base + n)
	recipient.SetNextPageID(p.NextPageID())
	p.SetSize(0)
}

// MoveFirstToEndOf implements the "sibling is right" redistribute case:
// this leaf donates its first entry to the tail of recipient, and the
// parent's separator key (index 1) is updated to this leaf's new first
// key. Grounded on b_plus_tree_leaf_page.cpp's MoveFirstToEndOf/
// CopyLastFrom, fused into one call since Go has no reference-parameter
// out-arg idiom to split it across two page objects cleanly.
func (p LeafPage) MoveFirstToEndOf(recipient LeafPage, parent InternalPage) {
	k0, v0 := append([]byte(nil), p.KeyAt(0)...), append([]byte(nil), p.ValueAt(0)...)
	n := p.Size()
	for i := 1; i < n; i++ {
		p.copyPairFrom(i-1, p, i)
	}
	p.SetSize(n - 1)

	rn := recipient.Size()
	recipient.setPairAt(rn, k0, v0)
	recipient.SetSize(rn + 1)

	parent.SetKeyAt(1, p.KeyAt(0))
}

// MoveLastToFrontOf implements the "sibling is left" redistribute case:
// this leaf donates its last entry to the head of recipient, updating the
// parent's separator at parentIndex.
func (p LeafPage) MoveLastToFrontOf(recipient LeafPage, parentIndex int, parent InternalPage) {
	n := p.Size()
	kLast, vLast := append([]byte(nil), p.KeyAt(n-1)...), append([]byte(nil), p.ValueAt(n-1)...)
	p.SetSize(n - 1)

	rn := recipient.Size()
	for i := rn; i > 0; i-- {
		recipient.copyPairFrom(i, recipient, i-1)
	}
	recipient.setPairAt(0, kLast, vLast)
	recipient.SetSize(rn + 1)

	parent.SetKeyAt(parentIndex, kLast)
}

func le32(b []byte) int32 {
	return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

func putLE32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}
