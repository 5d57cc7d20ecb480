package book

import (
	"github.com/huandu/skiplist"

	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

// priceLevel aggregates the orders resting at one price.
type priceLevel struct {
	price fixpoint.Price
	size  uint64 // sum of resting sizes
	count uint32 // resting order count, always len(ids)
	ids   []uint64
}

func newPriceLevel(price fixpoint.Price, orderID uint64, size uint64) *priceLevel {
	lvl := &priceLevel{
		price: price,
		size:  size,
		count: 1,
		ids:   make([]uint64, 1, levelIDsCapacity),
	}
	lvl.ids[0] = orderID
	return lvl
}

func (l *priceLevel) add(orderID uint64, size uint64) {
	l.ids = append(l.ids, orderID)
	l.count++
	l.size += size
}

// remove drops one resting order and reports whether the id was present.
// Sizes clamp at zero rather than wrap.
func (l *priceLevel) remove(orderID uint64, size uint64) bool {
	for i, id := range l.ids {
		if id != orderID {
			continue
		}
		l.ids[i] = l.ids[len(l.ids)-1]
		l.ids = l.ids[:len(l.ids)-1]
		l.count--
		if size > l.size {
			l.size = 0
		} else {
			l.size -= size
		}
		return true
	}
	return false
}

func (l *priceLevel) level() Level {
	return Level{Price: l.price, Size: l.size, Count: l.count}
}

// sideBook is one half of the book: price levels kept best-first in a
// skiplist, with a price-to-element map for O(1) level lookup. Bids order
// descending, asks ascending.
type sideBook struct {
	side    Side
	cmp     skiplist.Comparable
	levels  *skiplist.SkipList
	byPrice map[fixpoint.Price]*skiplist.Element
	orders  int64
}

func newSideBook(side Side) *sideBook {
	var cmp skiplist.Comparable
	if side == Bid {
		cmp = skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			a := lhs.(fixpoint.Price)
			b := rhs.(fixpoint.Price)
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			}
			return 0
		})
	} else {
		cmp = skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			a := lhs.(fixpoint.Price)
			b := rhs.(fixpoint.Price)
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		})
	}

	return &sideBook{
		side:    side,
		cmp:     cmp,
		levels:  skiplist.New(cmp),
		byPrice: make(map[fixpoint.Price]*skiplist.Element, 64),
	}
}

// insert adds one resting order, creating the level on first use.
func (b *sideBook) insert(price fixpoint.Price, orderID uint64, size uint64) *priceLevel {
	b.orders++
	if el, ok := b.byPrice[price]; ok {
		lvl := el.Value.(*priceLevel)
		lvl.add(orderID, size)
		return lvl
	}
	lvl := newPriceLevel(price, orderID, size)
	b.byPrice[price] = b.levels.Set(price, lvl)
	return lvl
}

// remove fully removes one resting order; the level is deleted when its
// last order goes. Unknown prices or ids are a silent no-op.
func (b *sideBook) remove(price fixpoint.Price, orderID uint64, size uint64) bool {
	el, ok := b.byPrice[price]
	if !ok {
		return false
	}
	lvl := el.Value.(*priceLevel)
	if !lvl.remove(orderID, size) {
		return false
	}
	b.orders--
	if lvl.count == 0 {
		b.levels.RemoveElement(el)
		delete(b.byPrice, price)
	}
	return true
}

// reduce shrinks a level by a partially filled quantity; the order itself
// stays resting. Callers resolve the order through the index first.
func (b *sideBook) reduce(price fixpoint.Price, qty uint64) bool {
	el, ok := b.byPrice[price]
	if !ok {
		return false
	}
	lvl := el.Value.(*priceLevel)
	if qty > lvl.size {
		lvl.size = 0
	} else {
		lvl.size -= qty
	}
	return true
}

// depthOf returns the 0-based position of price within the visible window,
// or -1 when it is absent. The scan is bounded by TopDepth.
func (b *sideBook) depthOf(price fixpoint.Price) int {
	el := b.levels.Front()
	for i := 0; el != nil && i < TopDepth; i++ {
		if el.Value.(*priceLevel).price == price {
			return i
		}
		el = el.Next()
	}
	return -1
}

// topInto projects the best TopDepth levels into dst, zero-padding the
// tail.
func (b *sideBook) topInto(dst *[TopDepth]Level) {
	el := b.levels.Front()
	for i := 0; i < TopDepth; i++ {
		if el != nil {
			dst[i] = el.Value.(*priceLevel).level()
			el = el.Next()
		} else {
			dst[i] = Level{}
		}
	}
}

func (b *sideBook) best() (Level, bool) {
	el := b.levels.Front()
	if el == nil {
		return Level{}, false
	}
	return el.Value.(*priceLevel).level(), true
}

// each walks levels best-first until fn returns false.
func (b *sideBook) each(fn func(*priceLevel) bool) {
	for el := b.levels.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*priceLevel)) {
			return
		}
	}
}

func (b *sideBook) levelCount() int {
	return b.levels.Len()
}

func (b *sideBook) orderCount() int64 {
	return b.orders
}

func (b *sideBook) reset() {
	b.levels = skiplist.New(b.cmp)
	b.byPrice = make(map[fixpoint.Price]*skiplist.Element, 64)
	b.orders = 0
}
