package page

import (
	"encoding/binary"
	"fmt"
)

// HeaderPage is the persistent index-name -> root-page-id table living at
// PageID 0, per spec.md §3/§6. Layout: a 4-byte record count, followed by
// that many [nameLen uint16 | name bytes | rootPageID i32] records,
// generalizing the teacher's single-root WriteRootID/ReadRootID
// (disk_manager/main.go) to the multi-index table spec.md actually
// describes.
type HeaderPage struct {
	Buf []byte
}

const headerCountOffset = 0
const headerRecordsOffset = 4

func NewHeaderPage(buf []byte) HeaderPage { return HeaderPage{Buf: buf} }

// Init sets the record count to zero, making the page an empty record
// table.
func (h HeaderPage) Init() {
	binary.LittleEndian.PutUint32(h.Buf[headerCountOffset:], 0)
}

type headerRecord struct {
	name   string
	rootID PageID
	offset int
	length int
}

func (h HeaderPage) count() int {
	return int(binary.LittleEndian.Uint32(h.Buf[headerCountOffset:]))
}

func (h HeaderPage) setCount(n int) {
	binary.LittleEndian.PutUint32(h.Buf[headerCountOffset:], uint32(n))
}

func (h HeaderPage) records() []headerRecord {
	n := h.count()
	recs := make([]headerRecord, 0, n)
	off := headerRecordsOffset
	for i := 0; i < n; i++ {
		nameLen := int(binary.LittleEndian.Uint16(h.Buf[off:]))
		off += 2
		name := string(h.Buf[off : off+nameLen])
		off += nameLen
		rootID := PageID(int32(binary.LittleEndian.Uint32(h.Buf[off:])))
		recLen := 2 + nameLen + 4
		recs = append(recs, headerRecord{name: name, rootID: rootID, offset: off - 2 - nameLen, length: recLen})
		off += 4
	}
	return recs
}

func (h HeaderPage) writeAll(recs []headerRecord) error {
	off := headerRecordsOffset
	for _, r := range recs {
		if off+2+len(r.name)+4 > PageSize {
			return fmt.Errorf("page: header page overflow")
		}
		binary.LittleEndian.PutUint16(h.Buf[off:], uint16(len(r.name)))
		off += 2
		copy(h.Buf[off:], r.name)
		off += len(r.name)
		binary.LittleEndian.PutUint32(h.Buf[off:], uint32(int32(r.rootID)))
		off += 4
	}
	h.setCount(len(recs))
	return nil
}

// GetRootId returns the root page id registered for name, if any.
func (h HeaderPage) GetRootId(name string) (PageID, bool) {
	for _, r := range h.records() {
		if r.name == name {
			return r.rootID, true
		}
	}
	return InvalidPageID, false
}

// InsertRecord adds a new (name, rootID) record. Returns an error if name
// already exists or the page is full.
func (h HeaderPage) InsertRecord(name string, rootID PageID) error {
	recs := h.records()
	for _, r := range recs {
		if r.name == name {
			return fmt.Errorf("page: header record %q already exists", name)
		}
	}
	recs = append(recs, headerRecord{name: name, rootID: rootID})
	return h.writeAll(recs)
}

// UpdateRecord overwrites the root id for an existing name.
func (h HeaderPage) UpdateRecord(name string, rootID PageID) error {
	recs := h.records()
	for i := range recs {
		if recs[i].name == name {
			recs[i].rootID = rootID
			return h.writeAll(recs)
		}
	}
	return fmt.Errorf("page: header record %q not found", name)
}

// DeleteRecord removes name's record. Returns an error if name has no
// record.
func (h HeaderPage) DeleteRecord(name string) error {
	recs := h.records()
	for i, r := range recs {
		if r.name == name {
			recs = append(recs[:i], recs[i+1:]...)
			return h.writeAll(recs)
		}
	}
	return fmt.Errorf("page: header record %q not found", name)
}
