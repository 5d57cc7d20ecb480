package book

// pendingTrade is the one-slot buffer holding a T event until the F/C pair
// that performs its book mutation arrives.
type pendingTrade struct {
	meta         Event
	consumedSide Side
	haveFill     bool
	active       bool
}

func (p *pendingTrade) set(ev *Event) {
	p.meta = *ev
	p.consumedSide = ev.Side
	p.haveFill = false
	p.active = true
}

func (p *pendingTrade) clear() {
	*p = pendingTrade{}
}

// Engine reconstructs MBP-10 state from one instrument's MBO stream. It is
// strictly synchronous: Apply is the only mutator, runs on one goroutine,
// and never blocks. Inconsistent input never fails an Apply; the offending
// event is dropped, logged and counted, so no single bad row can corrupt
// book state beyond itself.
type Engine struct {
	publisherID  uint16
	instrumentID uint32
	orderCap     int

	bids    *sideBook
	asks    *sideBook
	index   *orderIndex
	pending pendingTrade

	snap  Snapshot
	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithOrderCapacity pre-sizes the order index for the expected number of
// concurrently resting orders.
func WithOrderCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.orderCap = n
		}
	}
}

// New creates an empty engine. publisherID and instrumentID are stamped
// into every emitted snapshot.
func New(publisherID uint16, instrumentID uint32, opts ...Option) *Engine {
	e := &Engine{
		publisherID:  publisherID,
		instrumentID: instrumentID,
		orderCap:     defaultOrderCapacity,
		bids:         newSideBook(Bid),
		asks:         newSideBook(Ask),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = newOrderIndex(e.orderCap)
	return e
}

// Apply feeds one event through the book and returns the snapshot it
// produced, or nil when the event is suppressed (no visible change to the
// top TopDepth levels). The returned snapshot is the engine's reusable
// buffer; see Snapshot.
func (e *Engine) Apply(ev *Event) *Snapshot {
	e.stats.Events++

	// A buffered trade is only resolvable by its F/C pair, or replaceable
	// by a newer T. Anything else means the pair never arrived.
	if e.pending.active {
		switch ev.Action {
		case Trade, Fill, Cancel:
		default:
			e.stats.StaleTrades++
			logger.Warn().
				Uint64("pending_sequence", e.pending.meta.Sequence).
				Uint64("sequence", ev.Sequence).
				Str("action", ev.Action.String()).
				Msg("pending trade never resolved, dropping buffer")
			e.pending.clear()
		}
	}

	switch ev.Action {
	case Clear:
		e.stats.Clears++
		return e.applyClear(ev)
	case Add:
		e.stats.Adds++
		return e.applyAdd(ev)
	case Cancel:
		e.stats.Cancels++
		return e.applyCancel(ev)
	case Trade:
		e.stats.Trades++
		return e.applyTrade(ev)
	case Fill:
		e.stats.Fills++
		return e.applyFill(ev)
	case Modify:
		e.stats.Modifies++
		return e.applyModify(ev)
	default:
		e.stats.InvalidEvents++
		logger.Warn().
			Str("action", ev.Action.String()).
			Uint64("sequence", ev.Sequence).
			Msg("unknown action dropped")
		return nil
	}
}

// Clear empties both books, the order index, and the pending-trade buffer.
func (e *Engine) Clear() {
	e.bids.reset()
	e.asks.reset()
	e.index.reset(e.orderCap)
	e.pending.clear()
}

// BestBid returns the highest resting bid level.
func (e *Engine) BestBid() (Level, bool) {
	return e.bids.best()
}

// BestAsk returns the lowest resting ask level.
func (e *Engine) BestAsk() (Level, bool) {
	return e.asks.best()
}

// TotalOrders is the number of currently resting orders.
func (e *Engine) TotalOrders() int {
	return e.index.len()
}

// LevelCounts returns the number of distinct price levels per side.
func (e *Engine) LevelCounts() (bids, asks int) {
	return e.bids.levelCount(), e.asks.levelCount()
}

// Stats returns a copy of the engine's counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) applyClear(ev *Event) *Snapshot {
	e.Clear()
	return e.project(ev, ev.Action, ev.Side, -1)
}

func (e *Engine) applyAdd(ev *Event) *Snapshot {
	if ev.Price == 0 || ev.Size == 0 || ev.OrderID == 0 || (ev.Side != Bid && ev.Side != Ask) {
		e.stats.InvalidEvents++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("add rejected: zero price, size, id or unusable side")
		return nil
	}
	if _, ok := e.index.get(ev.OrderID); ok {
		e.stats.DuplicateAdds++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("duplicate add dropped")
		return nil
	}

	side := e.sideBook(ev.Side)
	side.insert(ev.Price, ev.OrderID, uint64(ev.Size))
	e.index.put(ev.OrderID, orderRef{Side: ev.Side, Price: ev.Price, Size: uint64(ev.Size)})

	depth := side.depthOf(ev.Price)
	if depth < 0 {
		// Resting below the visible window: no observable change.
		return nil
	}
	return e.project(ev, ev.Action, ev.Side, depth)
}

// applyCancel removes a resting order entirely. The index-recorded size is
// authoritative; the depth check happens before removal because removing
// may both shrink the top window and shift the level's position.
func (e *Engine) applyCancel(ev *Event) *Snapshot {
	ref, ok := e.index.remove(ev.OrderID)
	if !ok {
		e.stats.UnknownOrders++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Str("action", ev.Action.String()).
			Msg("removal of unknown order dropped")
		return nil
	}

	side := e.sideBook(ref.Side)
	depthBefore := side.depthOf(ref.Price)
	if !side.remove(ref.Price, ev.OrderID, ref.Size) {
		e.stats.InvalidEvents++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("order tracked by index but absent from its level")
		return nil
	}

	if e.pending.active {
		return e.resolveTrade(ref, depthBefore)
	}
	if depthBefore < 0 {
		return nil
	}
	return e.project(ev, ev.Action, ref.Side, depthBefore)
}

// applyTrade buffers a T event; the book mutation and emission belong to
// the paired F/C. Neutral trades carry no resting side and are ignored.
func (e *Engine) applyTrade(ev *Event) *Snapshot {
	if ev.Side == None {
		e.stats.NeutralTrades++
		return nil
	}
	if e.pending.active {
		e.stats.StaleTrades++
		logger.Warn().
			Uint64("pending_sequence", e.pending.meta.Sequence).
			Uint64("sequence", ev.Sequence).
			Msg("unresolved trade replaced by newer trade")
	}
	e.pending.set(ev)
	return nil
}

// applyFill absorbs the F of a pending trade sequence, recording which
// side was consumed. Without a pending T it is a stand-alone fill.
func (e *Engine) applyFill(ev *Event) *Snapshot {
	if e.pending.active {
		e.pending.consumedSide = ev.Side
		e.pending.haveFill = true
		return nil
	}
	return e.standaloneFill(ev)
}

// standaloneFill treats an unpaired F as a cancel for the filled quantity:
// full consumption removes the order, partial consumption shrinks it in
// place.
func (e *Engine) standaloneFill(ev *Event) *Snapshot {
	ref, ok := e.index.get(ev.OrderID)
	if !ok {
		e.stats.UnknownOrders++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("fill of unknown order dropped")
		return nil
	}
	qty := uint64(ev.Size)
	if qty == 0 {
		e.stats.InvalidEvents++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("fill with zero size dropped")
		return nil
	}
	if qty >= ref.Size {
		return e.applyCancel(ev)
	}

	side := e.sideBook(ref.Side)
	depthBefore := side.depthOf(ref.Price)
	side.reduce(ref.Price, qty)
	ref.Size -= qty
	e.index.put(ev.OrderID, ref)

	if depthBefore < 0 {
		return nil
	}
	return e.project(ev, ev.Action, ref.Side, depthBefore)
}

// applyModify replaces a resting order: full cancel of the old leg, add of
// the new. One snapshot covers both legs when either touches the window.
func (e *Engine) applyModify(ev *Event) *Snapshot {
	ref, ok := e.index.remove(ev.OrderID)
	if !ok {
		e.stats.UnknownOrders++
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("modify of unknown order dropped")
		return nil
	}

	oldSide := e.sideBook(ref.Side)
	oldDepth := oldSide.depthOf(ref.Price)
	oldSide.remove(ref.Price, ev.OrderID, ref.Size)

	side := ev.Side
	newDepth := -1
	if ev.Price != 0 && ev.Size != 0 && (ev.Side == Bid || ev.Side == Ask) {
		newSide := e.sideBook(ev.Side)
		newSide.insert(ev.Price, ev.OrderID, uint64(ev.Size))
		e.index.put(ev.OrderID, orderRef{Side: ev.Side, Price: ev.Price, Size: uint64(ev.Size)})
		newDepth = newSide.depthOf(ev.Price)
	} else {
		e.stats.InvalidEvents++
		side = ref.Side
		logger.Warn().
			Uint64("order_id", ev.OrderID).
			Uint64("sequence", ev.Sequence).
			Msg("modify with unusable replacement, applied as cancel")
	}

	if oldDepth < 0 && newDepth < 0 {
		return nil
	}
	depth := newDepth
	if depth < 0 {
		depth = oldDepth
	}
	return e.project(ev, ev.Action, side, depth)
}

// resolveTrade finishes a T->F->C sequence. The C already performed the
// removal; the emitted snapshot carries the buffered T's metadata with the
// side overridden to the consumed side, where the book actually mutated,
// never the T's declared (aggressor) side.
func (e *Engine) resolveTrade(ref orderRef, depthBefore int) *Snapshot {
	if e.pending.haveFill && e.pending.consumedSide != ref.Side {
		logger.Warn().
			Uint64("pending_sequence", e.pending.meta.Sequence).
			Msg("fill side disagrees with resting order, using the book side")
	}

	var snap *Snapshot
	if depthBefore >= 0 {
		snap = e.project(&e.pending.meta, Trade, ref.Side, depthBefore)
	}
	e.pending.clear()
	return snap
}

func (e *Engine) sideBook(side Side) *sideBook {
	if side == Bid {
		return e.bids
	}
	return e.asks
}
