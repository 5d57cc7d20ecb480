package book

import "github.com/rs/zerolog"

// BookReport is an exportable view of the book's resting state: the final
// book-state summary logged when a run completes.
type BookReport struct {
	BestBid      Level
	BestAsk      Level
	BidLevels    int
	AskLevels    int
	BidOrders    int64
	AskOrders    int64
	TotalOrders  int
	PendingTrade bool
}

// Report captures the current resting state of both sides.
func (e *Engine) Report() BookReport {
	r := BookReport{
		BidLevels:    e.bids.levelCount(),
		AskLevels:    e.asks.levelCount(),
		BidOrders:    e.bids.orderCount(),
		AskOrders:    e.asks.orderCount(),
		TotalOrders:  e.index.len(),
		PendingTrade: e.pending.active,
	}
	if best, ok := e.bids.best(); ok {
		r.BestBid = best
	}
	if best, ok := e.asks.best(); ok {
		r.BestAsk = best
	}
	return r
}

// MarshalZerologObject logs the report as one structured object.
func (r BookReport) MarshalZerologObject(e *zerolog.Event) {
	e.Str("best_bid", r.BestBid.Price.String()).
		Str("best_ask", r.BestAsk.Price.String()).
		Int("bid_levels", r.BidLevels).
		Int("ask_levels", r.AskLevels).
		Int64("bid_orders", r.BidOrders).
		Int64("ask_orders", r.AskOrders).
		Int("total_orders", r.TotalOrders)
	if r.PendingTrade {
		e.Bool("pending_trade", true)
	}
}
