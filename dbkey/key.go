// Package dbkey supplies the concrete key and value types the rest of the
// module is parameterized over: a fixed-width comparable key and a record
// identifier, plus the codec each needs to live inside a raw page buffer.
package dbkey

import "encoding/binary"

// Comparator is the three-way comparison contract every ordered structure
// in this module (extendible hash buckets aside) is built against: negative
// if a < b, zero if equal, positive if a > b.
type Comparator func(a, b []byte) int

// Codec fixes the on-disk width of a key or value type and converts it to
// and from its byte-slice representation. Both the buffer pool and the
// B+tree only ever see raw bytes; Codec is how a caller's concrete type
// gets those bytes.
type Codec interface {
	Size() int
	Encode(dst []byte)
	Decode(src []byte)
}

// Int64Key is the reference key type: an 8-byte little-endian integer.
// GenericKey<N> in the original design generalizes to N ∈ {4,8,16,32,64};
// Int64Key is the N=8 instantiation, added here because the tree needs at
// least one concrete key to compile and test against.
type Int64Key int64

// Int64KeySize is the fixed encoded width of Int64Key.
const Int64KeySize = 8

func (k Int64Key) Size() int { return Int64KeySize }

func (k Int64Key) Encode(dst []byte) {
	binary.LittleEndian.PutUint64(dst, uint64(k))
}

func (k *Int64Key) Decode(src []byte) {
	*k = Int64Key(binary.LittleEndian.Uint64(src))
}

// CompareInt64Keys is the Comparator for byte-encoded Int64Keys.
func CompareInt64Keys(a, b []byte) int {
	x := int64(binary.LittleEndian.Uint64(a))
	y := int64(binary.LittleEndian.Uint64(b))
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
