// Package book reconstructs MBP-10 depth snapshots from a single
// instrument's MBO event stream. The Engine is a synchronous state
// machine: two price-ordered side books, an order index for O(1) cancel
// routing, and a one-slot pending-trade buffer that coalesces T->F->C
// sequences into single trade snapshots.
package book

import (
	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
	"github.com/aryandadwal2006/mbp-reconstructor/mbo"
)

// The wire package owns the event model; aliases keep engine code and
// tests readable.
type (
	Event  = mbo.Event
	Side   = mbo.Side
	Action = mbo.Action
)

const (
	Bid  Side = mbo.SideBid
	Ask  Side = mbo.SideAsk
	None Side = mbo.SideNone
)

const (
	Add    Action = mbo.ActionAdd
	Cancel Action = mbo.ActionCancel
	Trade  Action = mbo.ActionTrade
	Fill   Action = mbo.ActionFill
	Clear  Action = mbo.ActionClear
	Modify Action = mbo.ActionModify
)

// Level is one projected price slot: the aggregate size and order count
// resting at a price. The zero Level pads snapshots when a side has fewer
// than TopDepth levels.
type Level struct {
	Price fixpoint.Price
	Size  uint64
	Count uint32
}

// orderRef is the order index's record of where an order rests. The price
// key, not a pointer, is the reference into the side book.
type orderRef struct {
	Side  Side
	Price fixpoint.Price
	Size  uint64
}
