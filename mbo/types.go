// Package mbo defines the Market-By-Order event model and the CSV event
// source that feeds the book engine. Every record refers to a single order
// by id; the engine aggregates them into price levels.
package mbo

import "github.com/aryandadwal2006/mbp-reconstructor/fixpoint"

// Action identifies the book operation an event carries. The values are
// the wire characters of the input format.
type Action byte

const (
	ActionAdd    Action = 'A'
	ActionCancel Action = 'C'
	ActionTrade  Action = 'T'
	ActionFill   Action = 'F'
	ActionClear  Action = 'R'
	ActionModify Action = 'M'
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionCancel, ActionTrade, ActionFill, ActionClear, ActionModify:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(byte(a))
}

// Side identifies which half of the book an event addresses. SideNone is
// only meaningful on trades ("trade with no resting side").
type Side byte

const (
	SideBid  Side = 'B'
	SideAsk  Side = 'A'
	SideNone Side = 'N'
)

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk || s == SideNone
}

func (s Side) String() string {
	return string(byte(s))
}

// Event is one MBO record. Timestamps are opaque strings passed through to
// the output verbatim; Flags and TsInDelta are passthrough metadata that
// default to zero when the input omits them.
type Event struct {
	TsRecv    string
	TsEvent   string
	Action    Action
	Side      Side
	Price     fixpoint.Price
	Size      uint32
	OrderID   uint64
	Flags     uint32
	TsInDelta int64
	Sequence  uint64
	Symbol    string
}

// Reset clears e for reuse.
func (e *Event) Reset() {
	*e = Event{}
}
