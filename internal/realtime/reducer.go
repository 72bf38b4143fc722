package realtime

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RowEvent is one pushed insert or update for a tracked row.
type RowEvent struct {
	ID        uuid.UUID
	UpdatedAt time.Time
	Payload   json.RawMessage
}

// Reducer merges pushed row events into a local snapshot keyed by row id.
// The newest UpdatedAt wins, so replays and out-of-order delivery converge
// on the same state as a fresh read would.
type Reducer struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]RowEvent
}

// NewReducer builds an empty reducer.
func NewReducer() *Reducer {
	return &Reducer{rows: make(map[uuid.UUID]RowEvent)}
}

// Apply merges the event and reports whether it changed the snapshot. A
// stale event, one not newer than the stored row, is dropped. Equal
// timestamps keep the stored row so a replayed event is a no-op.
func (r *Reducer) Apply(event RowEvent) bool {
	if event.ID == uuid.Nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[event.ID]
	if ok && !event.UpdatedAt.After(current.UpdatedAt) {
		return false
	}
	r.rows[event.ID] = event
	return true
}

// Remove drops a row from the snapshot, for hard deletes.
func (r *Reducer) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
}

// Get returns the stored row for id.
func (r *Reducer) Get(id uuid.UUID) (RowEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	return row, ok
}

// Snapshot returns every stored row, newest first.
func (r *Reducer) Snapshot() []RowEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RowEvent, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Len reports the number of tracked rows.
func (r *Reducer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
