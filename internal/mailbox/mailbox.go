// Package mailbox moves session-scoped values between screens. Each key is a
// single-use slot: a value put under a key can be taken exactly once, after
// which the slot is empty again. This gives write-once-read-once semantics
// so stale data can never be re-consumed after back-navigation.
package mailbox

import "sync"

// Well-known slots used by the capture-to-compare flow.
const (
	KeyCapturedPhoto = "capturedPhoto"
	KeyDesignPhoto   = "designPhoto"
)

// Mailbox is a session-scoped single-use key-value store. It is safe for
// concurrent use; UI commands run on background goroutines.
type Mailbox struct {
	mu    sync.Mutex
	slots map[string]any
}

func New() *Mailbox {
	return &Mailbox{slots: make(map[string]any)}
}

// Put stores value under key, replacing any unconsumed previous value.
func (m *Mailbox) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
}

// TakeOnce returns the value stored under key and clears the slot in the
// same step. The second return is false when the slot is empty; callers must
// treat that as "no upstream data" and return to the flow's entry point.
func (m *Mailbox) TakeOnce(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.slots[key]
	if !ok {
		return nil, false
	}
	delete(m.slots, key)
	return value, true
}

// Clear empties every slot. Called when the session ends.
func (m *Mailbox) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = make(map[string]any)
}
