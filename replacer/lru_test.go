package replacer

import "testing"

func TestVictimIsLeastRecentlyInserted(t *testing.T) {
	r := New[int64]()
	r.Insert(1)
	r.Insert(2)
	r.Insert(3)

	if got := r.Size(); got != 3 {
		t.Fatalf("Size() = %d, want 3", got)
	}

	v, ok := r.Victim()
	if !ok || v != 1 {
		t.Fatalf("Victim() = (%d, %v), want (1, true)", v, ok)
	}
	if got := r.Size(); got != 2 {
		t.Fatalf("Size() after victim = %d, want 2", got)
	}
}

func TestInsertIsIdempotentAndRefreshesRecency(t *testing.T) {
	r := New[int64]()
	r.Insert(1)
	r.Insert(2)
	r.Insert(1) // re-inserting 1 should move it to the back

	if got := r.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}
	v, ok := r.Victim()
	if !ok || v != 2 {
		t.Fatalf("Victim() = (%d, %v), want (2, true)", v, ok)
	}
	v, ok = r.Victim()
	if !ok || v != 1 {
		t.Fatalf("Victim() = (%d, %v), want (1, true)", v, ok)
	}
}

func TestErase(t *testing.T) {
	r := New[int64]()
	r.Insert(1)
	r.Insert(2)

	if !r.Erase(1) {
		t.Fatal("Erase(1) = false, want true")
	}
	if r.Erase(1) {
		t.Fatal("second Erase(1) = true, want false")
	}
	if got := r.Size(); got != 1 {
		t.Fatalf("Size() = %d, want 1", got)
	}
	v, ok := r.Victim()
	if !ok || v != 2 {
		t.Fatalf("Victim() = (%d, %v), want (2, true)", v, ok)
	}
}

func TestVictimOnEmptyReplacer(t *testing.T) {
	r := New[int64]()
	if _, ok := r.Victim(); ok {
		t.Fatal("Victim() on empty replacer should report false")
	}
}
