package page

import (
	"bytes"
	"encoding/binary"
	"testing"
)

const (
	testKeySize = 8
	testValSize = 8
)

func i64(n int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(n))
	return b
}

func cmp(a, b []byte) int { return bytes.Compare(a, b) }

func newTestLeaf(pageID PageID) LeafPage {
	buf := make([]byte, PageSize)
	l := NewLeafPage(buf, testKeySize, testValSize)
	l.Init(pageID, InvalidPageID)
	return l
}

func TestLeafInitDefaults(t *testing.T) {
	l := newTestLeaf(5)
	if l.PageID() != 5 {
		t.Fatalf("PageID() = %d, want 5", l.PageID())
	}
	if l.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", l.Size())
	}
	if l.NextPageID() != InvalidPageID {
		t.Fatalf("NextPageID() = %d, want InvalidPageID", l.NextPageID())
	}
	if !l.IsLeaf() {
		t.Fatal("expected IsLeaf() true")
	}
}

func TestLeafInsertKeepsSortedOrder(t *testing.T) {
	l := newTestLeaf(1)
	l.Insert(i64(3), i64(30), cmp)
	l.Insert(i64(1), i64(10), cmp)
	l.Insert(i64(2), i64(20), cmp)

	if l.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", l.Size())
	}
	for i, want := range []int64{1, 2, 3} {
		k := l.KeyAt(i)
		if binary.LittleEndian.Uint64(k) != uint64(want) {
			t.Fatalf("KeyAt(%d) = %d, want %d", i, binary.LittleEndian.Uint64(k), want)
		}
	}
}

func TestLeafInsertDuplicateIsNoOp(t *testing.T) {
	l := newTestLeaf(1)
	l.Insert(i64(1), i64(10), cmp)
	l.Insert(i64(1), i64(999), cmp)

	if l.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", l.Size())
	}
	v, ok := l.Lookup(i64(1), cmp)
	if !ok || binary.LittleEndian.Uint64(v) != 10 {
		t.Fatalf("Lookup(1) = (%d, %v), want (10, true)", binary.LittleEndian.Uint64(v), ok)
	}
}

func TestLeafLookupMissing(t *testing.T) {
	l := newTestLeaf(1)
	l.Insert(i64(1), i64(10), cmp)
	if _, ok := l.Lookup(i64(2), cmp); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestLeafRemoveAndDeleteRecord(t *testing.T) {
	l := newTestLeaf(1)
	l.Insert(i64(1), i64(10), cmp)
	l.Insert(i64(2), i64(20), cmp)
	l.Insert(i64(3), i64(30), cmp)

	if n := l.RemoveAndDeleteRecord(i64(2), cmp); n != 2 {
		t.Fatalf("RemoveAndDeleteRecord = %d, want 2", n)
	}
	if _, ok := l.Lookup(i64(2), cmp); ok {
		t.Fatal("expected key 2 removed")
	}
	if _, ok := l.Lookup(i64(1), cmp); !ok {
		t.Fatal("expected key 1 to remain")
	}
	if _, ok := l.Lookup(i64(3), cmp); !ok {
		t.Fatal("expected key 3 to remain")
	}
}

func TestLeafMoveHalfToSplitsFloor(t *testing.T) {
	l := newTestLeaf(1)
	for i := int64(1); i <= 5; i++ {
		l.Insert(i64(i), i64(i*10), cmp)
	}
	right := newTestLeaf(2)
	l.MoveHalfTo(right)

	if l.Size() != 2 {
		t.Fatalf("left Size() = %d, want 2 (floor(5/2))", l.Size())
	}
	if right.Size() != 3 {
		t.Fatalf("right Size() = %d, want 3", right.Size())
	}
	if binary.LittleEndian.Uint64(right.KeyAt(0)) != 3 {
		t.Fatalf("right's first key = %d, want 3", binary.LittleEndian.Uint64(right.KeyAt(0)))
	}
}

func TestLeafMoveAllToMergesAndLinksNext(t *testing.T) {
	left := newTestLeaf(1)
	left.Insert(i64(1), i64(10), cmp)
	right := newTestLeaf(2)
	right.Insert(i64(2), i64(20), cmp)
	right.SetNextPageID(99)
	left.SetNextPageID(2)

	right.MoveAllTo(left)

	if left.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", left.Size())
	}
	if left.NextPageID() != 99 {
		t.Fatalf("NextPageID() = %d, want 99", left.NextPageID())
	}
	if right.Size() != 0 {
		t.Fatalf("right Size() = %d, want 0 after merge", right.Size())
	}
}

func TestLeafKeyIndexReturnsSizeWhenNotFound(t *testing.T) {
	l := newTestLeaf(1)
	l.Insert(i64(1), i64(10), cmp)
	l.Insert(i64(3), i64(30), cmp)
	if idx := l.KeyIndex(i64(5), cmp); idx != l.Size() {
		t.Fatalf("KeyIndex(5) = %d, want %d", idx, l.Size())
	}
}
