package page

import "encoding/binary"

// Byte offsets of the common tree-node header, bit-exact per spec.md §6:
// page_type, size, max_size, parent_page_id, page_id, each a little-endian
// i32, in that order.
const (
	offPageType     = 0
	offSize         = 4
	offMaxSize      = 8
	offParentPageID = 12
	offPageID       = 16
	commonHeaderSize = 20
)

// LeafHeaderSize and InternalHeaderSize are the header widths of each node
// kind; leaves extend the common header with next_page_id.
const (
	offNextPageID      = commonHeaderSize
	LeafHeaderSize     = commonHeaderSize + 4
	InternalHeaderSize = commonHeaderSize
)

// header wraps the first commonHeaderSize bytes of a node's frame data.
// Both LeafPage and InternalPage embed it so their accessors share one
// implementation instead of duplicating binary.LittleEndian calls.
type header struct {
	Buf []byte
}

func (h header) PageType() PageType {
	return PageType(int32(binary.LittleEndian.Uint32(h.Buf[offPageType:])))
}

func (h header) SetPageType(t PageType) {
	binary.LittleEndian.PutUint32(h.Buf[offPageType:], uint32(t))
}

func (h header) Size() int {
	return int(int32(binary.LittleEndian.Uint32(h.Buf[offSize:])))
}

func (h header) SetSize(n int) {
	binary.LittleEndian.PutUint32(h.Buf[offSize:], uint32(int32(n)))
}

func (h header) MaxSize() int {
	return int(int32(binary.LittleEndian.Uint32(h.Buf[offMaxSize:])))
}

func (h header) SetMaxSize(n int) {
	binary.LittleEndian.PutUint32(h.Buf[offMaxSize:], uint32(int32(n)))
}

// MinSize is ⌈max_size/2⌉, the underflow threshold spec.md §3 defines for
// every non-root node.
func (h header) MinSize() int {
	return (h.MaxSize() + 1) / 2
}

func (h header) ParentPageID() PageID {
	return PageID(int32(binary.LittleEndian.Uint32(h.Buf[offParentPageID:])))
}

func (h header) SetParentPageID(id PageID) {
	binary.LittleEndian.PutUint32(h.Buf[offParentPageID:], uint32(int32(id)))
}

func (h header) PageID() PageID {
	return PageID(int32(binary.LittleEndian.Uint32(h.Buf[offPageID:])))
}

func (h header) SetPageID(id PageID) {
	binary.LittleEndian.PutUint32(h.Buf[offPageID:], uint32(int32(id)))
}

func (h header) IsLeaf() bool { return h.PageType() == PageTypeLeaf }

// Comparator is a three-way key comparison, matching dbkey.Comparator's
// shape without page needing to import dbkey.
type Comparator func(a, b []byte) int

// Header exposes the common node header on a raw frame buffer without the
// caller needing to know whether it's a leaf or internal page — used by
// bptree when it only needs to read or fix up a node's identity (parent
// pointer, page id) during split/merge/insertIntoParent bookkeeping.
func Header(buf []byte) NodeHeader { return NodeHeader{header{Buf: buf}} }

// NodeHeader is the exported form of header, for use outside this package.
type NodeHeader struct{ header }
