package txn

import "testing"

func TestBackgroundIsZeroID(t *testing.T) {
	if got := Background().ID(); got != 0 {
		t.Fatalf("Background().ID() = %d, want 0", got)
	}
}

func TestNewWrapsID(t *testing.T) {
	if got := New(42).ID(); got != 42 {
		t.Fatalf("New(42).ID() = %d, want 42", got)
	}
}
