// Package registry tracks which device session is currently serving
// each IMEI, process-wide.
package registry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle is the subset of a device session the registry needs: enough
// to report its peer address and to force a superseded session to
// close. Command dispatch uses command.SessionHandle, which extends it.
// Session implements this interface; the registry never owns a
// session, only this non-owning reference to it.
type Handle interface {
	RemoteAddr() string
	Close(reason string)
}

// Entry is one registry record. LastSeen is updated on every inbound
// AVL batch and read by the control-plane status endpoint, so it is kept
// as an atomic field rather than guarded by an external lock.
type Entry struct {
	IMEI        string
	Handle      Handle
	PeerAddr    string
	ConnectedAt time.Time

	lastSeenNano int64
}

// LastSeen returns the last time a record was seen for this entry.
func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, atomic.LoadInt64(&e.lastSeenNano))
}

func (e *Entry) touch() {
	atomic.StoreInt64(&e.lastSeenNano, time.Now().UnixNano())
}

// Registry is a thread-safe IMEI -> Entry map. The zero value is not
// usable; construct one with New.
type Registry struct {
	db sync.Map // string (imei) -> *Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Insert registers h as the active session for imei. If a session was
// already registered for imei, "latest connection wins": the new
// entry supersedes it and the superseded handle is closed, unless it
// is the very same handle (a redundant re-insert, which is a no-op on
// the superseded handle).
func (r *Registry) Insert(imei string, h Handle, peerAddr string) {
	entry := &Entry{
		IMEI:        imei,
		Handle:      h,
		PeerAddr:    peerAddr,
		ConnectedAt: time.Now(),
	}
	entry.touch()

	old, loaded := r.db.Swap(imei, entry)
	if loaded {
		if oldEntry, ok := old.(*Entry); ok && oldEntry.Handle != h {
			oldEntry.Handle.Close("superseded by newer connection")
		}
	}
}

// Touch refreshes LastSeen for imei, if it is currently registered.
func (r *Registry) Touch(imei string) {
	if v, ok := r.db.Load(imei); ok {
		v.(*Entry).touch()
	}
}

// RemoveIfSelf removes imei's entry only if it still points at h. This
// is idempotent and safe to call from a closing session even after it
// has been superseded: the call becomes a no-op rather than deleting a
// newer successor's entry.
func (r *Registry) RemoveIfSelf(imei string, h Handle) bool {
	v, ok := r.db.Load(imei)
	if !ok {
		return false
	}
	entry, ok := v.(*Entry)
	if !ok || entry.Handle != h {
		return false
	}
	return r.db.CompareAndDelete(imei, v)
}

// Lookup returns the active entry for imei, if any.
func (r *Registry) Lookup(imei string) (*Entry, bool) {
	v, ok := r.db.Load(imei)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Snapshot returns every currently registered entry, for the
// device-status endpoint.
func (r *Registry) Snapshot() []*Entry {
	var out []*Entry
	r.db.Range(func(_, v interface{}) bool {
		out = append(out, v.(*Entry))
		return true
	})
	return out
}

// Len reports the number of currently registered devices.
func (r *Registry) Len() int {
	n := 0
	r.db.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
