package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNewestWins(t *testing.T) {
	reducer := NewReducer()
	id := uuid.New()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.True(t, reducer.Apply(RowEvent{ID: id, UpdatedAt: base, Payload: json.RawMessage(`{"status":"open"}`)}))
	require.True(t, reducer.Apply(RowEvent{ID: id, UpdatedAt: base.Add(time.Minute), Payload: json.RawMessage(`{"status":"closed"}`)}))

	row, ok := reducer.Get(id)
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"closed"}`, string(row.Payload))
}

func TestApplyDropsStaleAndReplayedEvents(t *testing.T) {
	reducer := NewReducer()
	id := uuid.New()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.True(t, reducer.Apply(RowEvent{ID: id, UpdatedAt: base.Add(time.Minute), Payload: json.RawMessage(`{"status":"closed"}`)}))

	// An older event arriving late must not win.
	assert.False(t, reducer.Apply(RowEvent{ID: id, UpdatedAt: base, Payload: json.RawMessage(`{"status":"open"}`)}))
	// A replay of the current event is a no-op.
	assert.False(t, reducer.Apply(RowEvent{ID: id, UpdatedAt: base.Add(time.Minute), Payload: json.RawMessage(`{"status":"closed"}`)}))

	row, _ := reducer.Get(id)
	assert.JSONEq(t, `{"status":"closed"}`, string(row.Payload))
	assert.Equal(t, 1, reducer.Len())
}

func TestApplyRejectsNilID(t *testing.T) {
	reducer := NewReducer()
	assert.False(t, reducer.Apply(RowEvent{UpdatedAt: time.Now()}))
	assert.Equal(t, 0, reducer.Len())
}

func TestSnapshotNewestFirst(t *testing.T) {
	reducer := NewReducer()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	older := uuid.New()
	newer := uuid.New()
	reducer.Apply(RowEvent{ID: older, UpdatedAt: base})
	reducer.Apply(RowEvent{ID: newer, UpdatedAt: base.Add(time.Hour)})

	snapshot := reducer.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, newer, snapshot[0].ID)
	assert.Equal(t, older, snapshot[1].ID)
}

func TestRemove(t *testing.T) {
	reducer := NewReducer()
	id := uuid.New()
	reducer.Apply(RowEvent{ID: id, UpdatedAt: time.Now()})

	reducer.Remove(id)
	_, ok := reducer.Get(id)
	assert.False(t, ok)
}

func TestApplyConcurrent(t *testing.T) {
	reducer := NewReducer()
	id := uuid.New()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			reducer.Apply(RowEvent{ID: id, UpdatedAt: base.Add(time.Duration(offset) * time.Second)})
		}(i)
	}
	wg.Wait()

	row, ok := reducer.Get(id)
	require.True(t, ok)
	assert.Equal(t, base.Add(49*time.Second), row.UpdatedAt)
}
