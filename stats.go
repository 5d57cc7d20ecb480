package book

import "github.com/rs/zerolog"

// Stats counts what the engine has seen and done. Counters never reset
// except through a new Engine; Clear events leave them untouched so a full
// run stays accountable end to end.
type Stats struct {
	Events    uint64
	Adds      uint64
	Cancels   uint64
	Trades    uint64
	Fills     uint64
	Clears    uint64
	Modifies  uint64
	Snapshots uint64

	// Data-quality counters. These mark events that were dropped or
	// rewritten rather than applied as-is.
	NeutralTrades uint64
	StaleTrades   uint64
	DuplicateAdds uint64
	UnknownOrders uint64
	InvalidEvents uint64
}

// Inconsistencies is the total number of dropped or rewritten events.
func (s Stats) Inconsistencies() uint64 {
	return s.StaleTrades + s.DuplicateAdds + s.UnknownOrders + s.InvalidEvents
}

// MarshalZerologObject logs the counters as one structured object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("events", s.Events).
		Uint64("adds", s.Adds).
		Uint64("cancels", s.Cancels).
		Uint64("trades", s.Trades).
		Uint64("fills", s.Fills).
		Uint64("clears", s.Clears).
		Uint64("modifies", s.Modifies).
		Uint64("snapshots", s.Snapshots)
	if s.NeutralTrades > 0 {
		e.Uint64("neutral_trades", s.NeutralTrades)
	}
	if s.StaleTrades > 0 {
		e.Uint64("stale_trades", s.StaleTrades)
	}
	if s.DuplicateAdds > 0 {
		e.Uint64("duplicate_adds", s.DuplicateAdds)
	}
	if s.UnknownOrders > 0 {
		e.Uint64("unknown_orders", s.UnknownOrders)
	}
	if s.InvalidEvents > 0 {
		e.Uint64("invalid_events", s.InvalidEvents)
	}
}
