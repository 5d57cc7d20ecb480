package book

import "github.com/aryandadwal2006/mbp-reconstructor/fixpoint"

// Snapshot is one MBP-10 record: the triggering event's metadata plus the
// best TopDepth levels of each side at that instant. For coalesced trades
// the metadata is the T event's, re-attributed to the consumed side.
//
// Apply hands out the engine's reusable snapshot. It is valid until the
// next Apply call; holders that outlive that must Clone.
type Snapshot struct {
	TsRecv       string
	TsEvent      string
	RType        uint8
	PublisherID  uint16
	InstrumentID uint32
	Action       Action
	Side         Side
	Depth        uint32
	Price        fixpoint.Price
	Size         uint32
	Flags        uint32
	TsInDelta    int64
	Sequence     uint64
	Bids         [TopDepth]Level
	Asks         [TopDepth]Level
	Symbol       string
	OrderID      uint64
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	cpy := *s
	return &cpy
}

// project fills the engine's snapshot buffer from a triggering event and
// the current books. depth outside [0, TopDepth) is stamped as 0 ("not in
// the window / not applicable").
func (e *Engine) project(ev *Event, action Action, side Side, depth int) *Snapshot {
	s := &e.snap
	s.TsRecv = ev.TsRecv
	s.TsEvent = ev.TsEvent
	s.RType = RTypeMBP10
	s.PublisherID = e.publisherID
	s.InstrumentID = e.instrumentID
	s.Action = action
	s.Side = side
	if depth >= 0 && depth < TopDepth {
		s.Depth = uint32(depth)
	} else {
		s.Depth = 0
	}
	s.Price = ev.Price
	s.Size = ev.Size
	s.Flags = ev.Flags
	s.TsInDelta = ev.TsInDelta
	s.Sequence = ev.Sequence
	s.Symbol = ev.Symbol
	s.OrderID = ev.OrderID
	e.bids.topInto(&s.Bids)
	e.asks.topInto(&s.Asks)
	e.stats.Snapshots++
	return s
}
