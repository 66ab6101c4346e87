package page

// InternalPage is a view over a frame's bytes as a B+tree internal node:
// an InternalHeaderSize header followed by size (key, child-page-id)
// pairs. Slot 0's key is a placeholder (never compared); for 1 <= i <
// size, key[i] is the smallest key reachable through child[i].
//
// Unlike the original C++ (which threads a *BufferPoolManager through
// MoveHalfTo/MoveAllTo/etc. to reparent moved children in place), every
// method here is a pure array operation over already-resident bytes. The
// caller (bptree.Tree) fetches and reparents moved children itself, since
// it already holds the pool reference the higher-level algorithm needs —
// see spec.md §4.4.3/§4.4.4, which describes reparenting as something the
// Insert/Coalesce/Redistribute algorithms do, not something the page
// layout owns.
type InternalPage struct {
	header
	KeySize int
}

// childValSize is the fixed width of a child page id.
const childValSize = 4

// NewInternalPage wraps buf as an InternalPage.
func NewInternalPage(buf []byte, keySize int) InternalPage {
	return InternalPage{header: header{Buf: buf}, KeySize: keySize}
}

func (p InternalPage) stride() int { return p.KeySize + childValSize }

func (p InternalPage) offsetOf(i int) int { return InternalHeaderSize + i*p.stride() }

// Init sets up an empty internal node, matching
// b_plus_tree_internal_page.cpp's Init.
func (p InternalPage) Init(pageID, parentID PageID) {
	p.SetPageType(PageTypeInternal)
	p.SetSize(0)
	p.SetPageID(pageID)
	p.SetParentPageID(parentID)
	p.SetMaxSize((PageSize - InternalHeaderSize) / p.stride())
}

func (p InternalPage) KeyAt(i int) []byte {
	off := p.offsetOf(i)
	return p.Buf[off : off+p.KeySize]
}

func (p InternalPage) SetKeyAt(i int, key []byte) { copy(p.KeyAt(i), key) }

func (p InternalPage) ValueAt(i int) PageID {
	off := p.offsetOf(i) + p.KeySize
	return PageID(le32(p.Buf[off : off+childValSize]))
}

func (p InternalPage) SetValueAt(i int, v PageID) {
	off := p.offsetOf(i) + p.KeySize
	putLE32(p.Buf[off:off+childValSize], int32(v))
}

func (p InternalPage) setPairAt(i int, key []byte, v PageID) {
	p.SetKeyAt(i, key)
	p.SetValueAt(i, v)
}

func (p InternalPage) copyPairFrom(dst int, src InternalPage, srcIdx int) {
	p.SetKeyAt(dst, src.KeyAt(srcIdx))
	p.SetValueAt(dst, src.ValueAt(srcIdx))
}

// ValueIndex returns the array index whose child pointer equals value, or
// -1 if none does.
func (p InternalPage) ValueIndex(value PageID) int {
	n := p.Size()
	for i := 0; i < n; i++ {
		if p.ValueAt(i) == value {
			return i
		}
	}
	return -1
}

// Lookup returns the child page id to descend into for key, scanning from
// index 1 (index 0's key is the ignored placeholder) as spec.md §4.4.1
// describes.
func (p InternalPage) Lookup(key []byte, cmp Comparator) PageID {
	n := p.Size()
	for i := 1; i < n; i++ {
		if cmp(key, p.KeyAt(i)) < 0 {
			return p.ValueAt(i - 1)
		}
	}
	return p.ValueAt(n - 1)
}

// PopulateNewRoot sets this (freshly allocated) page up as a two-child
// root: child[0] = oldValue, key[1]/child[1] = (newKey, newValue).
func (p InternalPage) PopulateNewRoot(oldValue PageID, newKey []byte, newValue PageID) {
	p.SetValueAt(0, oldValue)
	p.SetKeyAt(1, newKey)
	p.SetValueAt(1, newValue)
	p.SetSize(2)
}

// InsertNodeAfter inserts (newKey, newValue) immediately after the slot
// whose child pointer is oldValue. Returns the size after insertion, or
// the unchanged size if oldValue isn't found.
func (p InternalPage) InsertNodeAfter(oldValue PageID, newKey []byte, newValue PageID) int {
	idx := p.ValueIndex(oldValue)
	n := p.Size()
	if idx == -1 {
		return n
	}
	idx++
	for i := n; i > idx; i-- {
		p.copyPairFrom(i, p, i-1)
	}
	p.setPairAt(idx, newKey, newValue)
	p.SetSize(n + 1)
	return n + 1
}

// Remove deletes the pair at index, shifting later entries left.
func (p InternalPage) Remove(index int) {
	n := p.Size()
	for i := index + 1; i < n; i++ {
		p.copyPairFrom(i-1, p, i)
	}
	p.SetSize(n - 1)
}

// RemoveAndReturnOnlyChild returns the sole remaining child (slot 0: this
// method is only called when size == 1, i.e. only slot 0 is populated —
// see AdjustRoot) and empties the page.
//
// The original C++ (RemoveAndReturnOnlyChild) reads ValueAt(1) then calls
// Remove(0) followed by Remove(1); after the first Remove the array has
// already shifted left, so the second Remove(1) is a no-op or removes the
// wrong slot depending on size, and ValueAt(1) is read before either
// child is guaranteed to exist. Per spec.md §9's Open Question, the
// corrected behavior captures the sole child at index 0, then clears the
// page outright.
func (p InternalPage) RemoveAndReturnOnlyChild() PageID {
	v := p.ValueAt(0)
	p.SetSize(0)
	return v
}

// MoveHalfTo moves this node's upper half of (key, child) pairs into
// recipient, leaving floor(size/2) behind. Reparenting the moved children
// is the caller's responsibility (see type doc comment).
func (p InternalPage) MoveHalfTo(recipient InternalPage) {
	n := p.Size()
	half := n / 2
	recipient.copyRangeFrom(p, half, n-half)
	p.SetSize(half)
}

// MoveAllTo appends this node's entire array onto the tail of recipient
// (used during Coalesce) and empties this node. The caller is expected to
// have already fixed up KeyAt(0) with the separator key pulled from the
// parent, per spec.md's Coalesce description for internal nodes, and to
// reparent the moved children afterward.
func (p InternalPage) MoveAllTo(recipient InternalPage) {
	n := p.Size()
	recipient.copyRangeFrom(p, 0, n)
	p.SetSize(0)
}

func (p InternalPage) copyRangeFrom(src InternalPage, start, count int) {
	base := p.Size()
	for i := 0; i < count; i++ {
		p.copyPairFrom(base+i, src, start+i)
	}
	p.SetSize(base + count)
}

// PopFirst removes child[0] and returns it together with key[1] (index 0
// has no real key), shifting the rest left by one so the old key[1]
// becomes the new placeholder. Used by Redistribute when the right
// sibling donates its first entry.
func (p InternalPage) PopFirst() (key []byte, val PageID) {
	key = append([]byte(nil), p.KeyAt(1)...)
	val = p.ValueAt(0)
	n := p.Size()
	for i := 1; i < n; i++ {
		p.copyPairFrom(i-1, p, i)
	}
	p.SetSize(n - 1)
	return key, val
}

// PushBack appends (key, child) as the new last slot.
func (p InternalPage) PushBack(key []byte, val PageID) {
	n := p.Size()
	p.setPairAt(n, key, val)
	p.SetSize(n + 1)
}

// PopLast removes and returns the last pair.
func (p InternalPage) PopLast() (key []byte, val PageID) {
	n := p.Size()
	key = append([]byte(nil), p.KeyAt(n-1)...)
	val = p.ValueAt(n - 1)
	p.SetSize(n - 1)
	return key, val
}

// PushFront inserts val as the new child[0], shifting everything right by
// one; key becomes key[1]. Used by Redistribute when the left sibling
// donates its last entry.
func (p InternalPage) PushFront(key []byte, val PageID) {
	n := p.Size()
	for i := n; i > 0; i-- {
		p.copyPairFrom(i, p, i-1)
	}
	p.SetValueAt(0, val)
	p.SetKeyAt(1, key)
	p.SetSize(n + 1)
}
