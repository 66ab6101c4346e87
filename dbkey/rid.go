package dbkey

import "encoding/binary"

// RecordID identifies a tuple's physical location: the page it lives on and
// its slot within that page. This mirrors BusTub's RID and the teacher's
// RowPointer (types/row.go), concretized as the tree's fixed-width value
// type.
type RecordID struct {
	PageID    int32
	SlotIndex int32
}

// RecordIDSize is the fixed encoded width of a RecordID.
const RecordIDSize = 8

func (r RecordID) Size() int { return RecordIDSize }

func (r RecordID) Encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(r.PageID))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(r.SlotIndex))
}

func (r *RecordID) Decode(src []byte) {
	r.PageID = int32(binary.LittleEndian.Uint32(src[0:4]))
	r.SlotIndex = int32(binary.LittleEndian.Uint32(src[4:8]))
}

func (r RecordID) IsValid() bool { return r.PageID >= 0 }
