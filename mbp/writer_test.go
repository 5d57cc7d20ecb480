package mbp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

// wantHeader is the MBP-10 column layout, spelled out in full so a layout
// regression cannot hide behind the builder that produced it.
const wantHeader = ",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence" +
	",bid_px_00,bid_sz_00,bid_ct_00,bid_px_01,bid_sz_01,bid_ct_01,bid_px_02,bid_sz_02,bid_ct_02,bid_px_03,bid_sz_03,bid_ct_03,bid_px_04,bid_sz_04,bid_ct_04" +
	",bid_px_05,bid_sz_05,bid_ct_05,bid_px_06,bid_sz_06,bid_ct_06,bid_px_07,bid_sz_07,bid_ct_07,bid_px_08,bid_sz_08,bid_ct_08,bid_px_09,bid_sz_09,bid_ct_09" +
	",ask_px_00,ask_sz_00,ask_ct_00,ask_px_01,ask_sz_01,ask_ct_01,ask_px_02,ask_sz_02,ask_ct_02,ask_px_03,ask_sz_03,ask_ct_03,ask_px_04,ask_sz_04,ask_ct_04" +
	",ask_px_05,ask_sz_05,ask_ct_05,ask_px_06,ask_sz_06,ask_ct_06,ask_px_07,ask_sz_07,ask_ct_07,ask_px_08,ask_sz_08,ask_ct_08,ask_px_09,ask_sz_09,ask_ct_09" +
	",symbol,order_id"

func sampleSnapshot() *book.Snapshot {
	s := &book.Snapshot{
		TsRecv:       "2025-07-17T08:05:03.360677248Z",
		TsEvent:      "2025-07-17T08:05:03.360018154Z",
		RType:        book.RTypeMBP10,
		PublisherID:  2,
		InstrumentID: 1108,
		Action:       book.Add,
		Side:         book.Bid,
		Depth:        0,
		Price:        fixpoint.MustParse("5.51"),
		Size:         100,
		Flags:        130,
		TsInDelta:    165200,
		Sequence:     851012,
		Symbol:       "ARL",
		OrderID:      817593,
	}
	s.Bids[0] = book.Level{Price: fixpoint.MustParse("5.51"), Size: 100, Count: 1}
	return s
}

func TestWriter_Header(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, wantHeader+"\n", buf.String())
}

func TestWriter_Row(t *testing.T) {
	t.Run("populated bid level", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)

		require.NoError(t, w.Write(sampleSnapshot()))
		require.NoError(t, w.Flush())

		want := "0,2025-07-17T08:05:03.360677248Z,2025-07-17T08:05:03.360018154Z,10,2,1108,A,B,0,5.51,100,130,165200,851012" +
			",5.51,100,1" + strings.Repeat(",,0,0", 9) + // bids: level 0 set, rest empty
			strings.Repeat(",,0,0", 10) + // asks: all empty
			",ARL,817593\n"
		assert.Equal(t, want, buf.String())
		assert.Equal(t, uint64(1), w.Rows())
	})

	t.Run("empty price cells keep zero sizes", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)

		s := sampleSnapshot()
		s.Action = book.Clear
		s.Side = book.None
		s.Price = 0
		s.Size = 0
		s.Bids[0] = book.Level{}

		require.NoError(t, w.Write(s))
		require.NoError(t, w.Flush())

		line := buf.String()
		// price cell empty, size cell literal zero
		assert.Contains(t, line, ",R,N,0,,0,")
		assert.Equal(t, 76, strings.Count(line, ",")+1) // column count never changes
	})

	t.Run("clear row may omit timestamps", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)

		// A clear event carries no timestamps of its own; the snapshot
		// passes the empty strings through and must still serialize.
		s := &book.Snapshot{
			RType:        book.RTypeMBP10,
			PublisherID:  2,
			InstrumentID: 1108,
			Action:       book.Clear,
			Side:         book.None,
			Sequence:     851013,
			Symbol:       "ARL",
		}
		require.NoError(t, w.Write(s))
		require.NoError(t, w.Flush())

		want := "0,,,10,2,1108,R,N,0,,0,0,0,851013" +
			strings.Repeat(",,0,0", 20) +
			",ARL,0\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("row index increments in write order", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)

		for i := 0; i < 3; i++ {
			require.NoError(t, w.Write(sampleSnapshot()))
		}
		require.NoError(t, w.Flush())

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "0,"))
		assert.True(t, strings.HasPrefix(lines[1], "1,"))
		assert.True(t, strings.HasPrefix(lines[2], "2,"))
		assert.Equal(t, uint64(3), w.Rows())
	})
}

func TestWriter_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*book.Snapshot)
	}{
		{"missing ts_recv", func(s *book.Snapshot) { s.TsRecv = "" }},
		{"missing ts_event", func(s *book.Snapshot) { s.TsEvent = "" }},
		{"missing symbol", func(s *book.Snapshot) { s.Symbol = "" }},
		{"unknown action", func(s *book.Snapshot) { s.Action = book.Action('X') }},
		{"unknown side", func(s *book.Snapshot) { s.Side = book.Side('Z') }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)

			s := sampleSnapshot()
			tt.mutate(s)

			err := w.Write(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRow)
			require.NoError(t, w.Flush())
			assert.Empty(t, buf.String()) // rejected rows leave no bytes behind
			assert.Equal(t, uint64(0), w.Rows())
		})
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_WriteError(t *testing.T) {
	w := NewWriter(failWriter{})

	// Fill past the internal buffer so the underlying writer is hit.
	s := sampleSnapshot()
	var err error
	for i := 0; i < 4096 && err == nil; i++ {
		err = w.Write(s)
	}
	if err == nil {
		err = w.Flush()
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
