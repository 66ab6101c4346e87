package page

import "testing"

func newTestHeader() HeaderPage {
	buf := make([]byte, PageSize)
	h := NewHeaderPage(buf)
	h.Init()
	return h
}

func TestHeaderInsertAndGetRootId(t *testing.T) {
	h := newTestHeader()
	if err := h.InsertRecord("users", 5); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	id, ok := h.GetRootId("users")
	if !ok || id != 5 {
		t.Fatalf("GetRootId = (%d, %v), want (5, true)", id, ok)
	}
}

func TestHeaderInsertDuplicateNameFails(t *testing.T) {
	h := newTestHeader()
	if err := h.InsertRecord("users", 5); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := h.InsertRecord("users", 6); err == nil {
		t.Fatal("expected error inserting duplicate name")
	}
}

func TestHeaderUpdateRecord(t *testing.T) {
	h := newTestHeader()
	h.InsertRecord("users", 5)
	if err := h.UpdateRecord("users", 9); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	id, ok := h.GetRootId("users")
	if !ok || id != 9 {
		t.Fatalf("GetRootId = (%d, %v), want (9, true)", id, ok)
	}
}

func TestHeaderUpdateMissingNameFails(t *testing.T) {
	h := newTestHeader()
	if err := h.UpdateRecord("ghost", 1); err == nil {
		t.Fatal("expected error updating missing name")
	}
}

func TestHeaderDeleteRecord(t *testing.T) {
	h := newTestHeader()
	h.InsertRecord("users", 5)
	h.InsertRecord("orders", 7)

	if err := h.DeleteRecord("users"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, ok := h.GetRootId("users"); ok {
		t.Fatal("expected users record to be gone")
	}
	id, ok := h.GetRootId("orders")
	if !ok || id != 7 {
		t.Fatalf("GetRootId(orders) = (%d, %v), want (7, true)", id, ok)
	}
}

func TestHeaderGetRootIdMissing(t *testing.T) {
	h := newTestHeader()
	if _, ok := h.GetRootId("nope"); ok {
		t.Fatal("expected miss for unregistered name")
	}
}

func TestHeaderMultipleTreesCoexist(t *testing.T) {
	h := newTestHeader()
	names := []string{"a", "bb", "ccc", "dddd"}
	for i, name := range names {
		if err := h.InsertRecord(name, PageID(i+1)); err != nil {
			t.Fatalf("InsertRecord(%q): %v", name, err)
		}
	}
	for i, name := range names {
		id, ok := h.GetRootId(name)
		if !ok || id != PageID(i+1) {
			t.Fatalf("GetRootId(%q) = (%d, %v), want (%d, true)", name, id, ok, i+1)
		}
	}
}
