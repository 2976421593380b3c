package registry

import "testing"

type fakeHandle struct {
	addr   string
	closed string
}

func (f *fakeHandle) RemoteAddr() string { return f.addr }
func (f *fakeHandle) Close(reason string) { f.closed = reason }

func TestInsertSupersedesOlderSession(t *testing.T) {
	r := New()
	first := &fakeHandle{addr: "10.0.0.1:1"}
	second := &fakeHandle{addr: "10.0.0.2:1"}

	r.Insert("123", first, first.addr)
	r.Insert("123", second, second.addr)

	if first.closed == "" {
		t.Error("superseded handle was not closed")
	}
	if second.closed != "" {
		t.Error("current handle must not be closed")
	}

	entry, ok := r.Lookup("123")
	if !ok {
		t.Fatal("expected entry for 123")
	}
	if entry.Handle != Handle(second) {
		t.Error("registry does not point at the latest session")
	}
	if r.Len() != 1 {
		t.Errorf("got %d entries, want 1", r.Len())
	}
}

func TestRemoveIfSelfIsIdempotentAndProtectsSuccessor(t *testing.T) {
	r := New()
	first := &fakeHandle{addr: "10.0.0.1:1"}
	second := &fakeHandle{addr: "10.0.0.2:1"}

	r.Insert("123", first, first.addr)
	r.Insert("123", second, second.addr)

	// the superseded session's own close path must not unregister the
	// newer one
	if r.RemoveIfSelf("123", first) {
		t.Error("RemoveIfSelf must refuse to remove a superseded entry")
	}
	if _, ok := r.Lookup("123"); !ok {
		t.Fatal("successor entry was wrongly removed")
	}

	if !r.RemoveIfSelf("123", second) {
		t.Error("RemoveIfSelf should remove the entry it still owns")
	}
	if _, ok := r.Lookup("123"); ok {
		t.Error("entry should be gone")
	}

	// idempotent: calling again is a safe no-op
	if r.RemoveIfSelf("123", second) {
		t.Error("second RemoveIfSelf call should report no removal")
	}
}
