package pipeline

import (
	"sync"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/mbo"
)

// EventSource yields MBO events in stream order; Next returns io.EOF after
// the last event. Sources may hand out a reusable event that the following
// Next overwrites.
type EventSource interface {
	Next() (*mbo.Event, error)
}

// SnapshotSink consumes emitted MBP-10 snapshots.
//
// IMPORTANT: Implementations must either:
//  1. Serialize the snapshot synchronously before returning, OR
//  2. Clone the snapshot before returning
//
// The engine reuses one snapshot buffer across Apply calls, so anything
// kept past the next event must be cloned.
type SnapshotSink interface {
	Write(*book.Snapshot) error
	Flush() error
}

// MemorySink stores snapshots in memory, useful for testing.
type MemorySink struct {
	mu    sync.RWMutex
	snaps []*book.Snapshot
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		snaps: make([]*book.Snapshot, 0),
	}
}

// Write clones the snapshot and appends it to the in-memory slice.
func (m *MemorySink) Write(s *book.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s.Clone())
	return nil
}

// Flush does nothing.
func (m *MemorySink) Flush() error {
	return nil
}

// Count returns the number of snapshots stored.
func (m *MemorySink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snaps)
}

// Get returns the snapshot at the specified index.
func (m *MemorySink) Get(index int) *book.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snaps[index]
}

// Snapshots returns a copy of all snapshots stored.
func (m *MemorySink) Snapshots() []*book.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*book.Snapshot, len(m.snaps))
	copy(out, m.snaps)
	return out
}

// DiscardSink drops all snapshots, useful for benchmarking.
type DiscardSink struct{}

// NewDiscardSink creates a new DiscardSink.
func NewDiscardSink() *DiscardSink {
	return &DiscardSink{}
}

// Write does nothing.
func (*DiscardSink) Write(*book.Snapshot) error {
	return nil
}

// Flush does nothing.
func (*DiscardSink) Flush() error {
	return nil
}
