// Package history keeps the executed transactions so they can be undone.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"duopane/internal/transaction"
)

// DefaultCapacity is used when a history is created with a non-positive size.
const DefaultCapacity = 50

// Entry is one executed transaction.
type Entry struct {
	ID          uuid.UUID
	At          time.Time
	Description string
	Transaction transaction.Transaction
}

// Undoable reports whether reverting the entry changes anything.
func (e Entry) Undoable() bool {
	return e.Transaction != nil && e.Transaction.Revert().Kind() != transaction.KindNothing
}

// History is a bounded stack; pushing onto a full history drops the oldest
// entry. It lives in memory only.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Push records tx and returns its entry.
func (h *History) Push(tx transaction.Transaction) Entry {
	e := Entry{
		ID:          uuid.New(),
		At:          time.Now(),
		Description: tx.Describe(),
		Transaction: tx,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append([]Entry(nil), h.entries[over:]...)
	}
	return e
}

// Pop removes and returns the newest entry.
func (h *History) Pop() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return e, true
}

// Peek returns the newest entry without removing it.
func (h *History) Peek() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns the entries newest first.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}
