package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	book "github.com/aryandadwal2006/mbp-reconstructor"
)

func TestMemorySink_ClonesOnWrite(t *testing.T) {
	sink := NewMemorySink()

	snap := &book.Snapshot{Action: book.Add, Side: book.Bid, Sequence: 1}
	snap.Bids[0] = book.Level{Price: px("5.51"), Size: 100, Count: 1}
	require.NoError(t, sink.Write(snap))

	// The engine reuses its buffer; the sink must not see later mutations.
	snap.Sequence = 2
	snap.Bids[0] = book.Level{}
	require.NoError(t, sink.Write(snap))

	require.Equal(t, 2, sink.Count())
	assert.Equal(t, uint64(1), sink.Get(0).Sequence)
	assert.Equal(t, book.Level{Price: px("5.51"), Size: 100, Count: 1}, sink.Get(0).Bids[0])
	assert.Equal(t, uint64(2), sink.Get(1).Sequence)
	assert.NotSame(t, snap, sink.Get(0))
	assert.NotSame(t, snap, sink.Get(1))
}

func TestMemorySink_SnapshotsCopy(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Write(&book.Snapshot{Sequence: 1}))
	require.NoError(t, sink.Flush())

	snaps := sink.Snapshots()
	require.Len(t, snaps, 1)

	// Mutating the returned slice leaves the sink intact.
	snaps[0] = nil
	assert.NotNil(t, sink.Get(0))
	assert.Equal(t, 1, sink.Count())
}

func TestDiscardSink(t *testing.T) {
	sink := NewDiscardSink()
	assert.NoError(t, sink.Write(&book.Snapshot{}))
	assert.NoError(t, sink.Flush())
}
