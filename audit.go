package book

import (
	"fmt"

	"github.com/igrmk/treemap/v2"

	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

// levelAgg is the auditor's independently computed view of one price level.
type levelAgg struct {
	size  uint64
	count uint32
}

// CheckConsistency rebuilds both sides from the order index alone and walks
// the rebuilt view in lockstep with the side books. The two structures share
// no state, so any disagreement means an applied event corrupted one of
// them. Returns nil when the book is consistent, or ErrInconsistent wrapped
// with the first violation found.
//
// Cost is O(orders log levels); meant for tests and for an optional audit
// cadence in the driver, not the per-event hot path.
func (e *Engine) CheckConsistency() error {
	bidView := treemap.NewWithKeyCompare[fixpoint.Price, levelAgg](func(a, b fixpoint.Price) bool {
		return a > b
	})
	askView := treemap.NewWithKeyCompare[fixpoint.Price, levelAgg](func(a, b fixpoint.Price) bool {
		return a < b
	})

	var indexErr error
	e.index.scan(func(id uint64, ref orderRef) bool {
		view := bidView
		if ref.Side == Ask {
			view = askView
		} else if ref.Side != Bid {
			indexErr = fmt.Errorf("%w: order %d carries side %q", ErrInconsistent, id, ref.Side.String())
			return false
		}
		agg, _ := view.Get(ref.Price)
		agg.size += ref.Size
		agg.count++
		view.Set(ref.Price, agg)
		return true
	})
	if indexErr != nil {
		return indexErr
	}

	if err := auditSide(e.bids, bidView); err != nil {
		return err
	}
	return auditSide(e.asks, askView)
}

// auditSide compares one side book against the aggregate rebuilt from the
// index: same level sequence, same per-level size and count, no empty
// levels, and per-level id sets that match their counts.
func auditSide(b *sideBook, view *treemap.TreeMap[fixpoint.Price, levelAgg]) error {
	if b.levelCount() != view.Len() {
		return fmt.Errorf("%w: %s book has %d levels, index implies %d",
			ErrInconsistent, b.side.String(), b.levelCount(), view.Len())
	}

	it := view.Iterator()
	var err error
	b.each(func(lvl *priceLevel) bool {
		if !it.Valid() {
			err = fmt.Errorf("%w: %s book level %s beyond index view",
				ErrInconsistent, b.side.String(), lvl.price.String())
			return false
		}
		switch {
		case lvl.count == 0 || lvl.size == 0:
			err = fmt.Errorf("%w: empty %s level %s left in book",
				ErrInconsistent, b.side.String(), lvl.price.String())
		case lvl.count != uint32(len(lvl.ids)):
			err = fmt.Errorf("%w: %s level %s counts %d orders but holds %d ids",
				ErrInconsistent, b.side.String(), lvl.price.String(), lvl.count, len(lvl.ids))
		case lvl.price != it.Key():
			err = fmt.Errorf("%w: %s level %s out of order, index expects %s",
				ErrInconsistent, b.side.String(), lvl.price.String(), it.Key().String())
		case lvl.size != it.Value().size || lvl.count != it.Value().count:
			err = fmt.Errorf("%w: %s level %s holds size=%d count=%d, index implies size=%d count=%d",
				ErrInconsistent, b.side.String(), lvl.price.String(),
				lvl.size, lvl.count, it.Value().size, it.Value().count)
		}
		if err != nil {
			return false
		}
		it.Next()
		return true
	})
	return err
}
