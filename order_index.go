package book

import "github.com/tidwall/hashmap"

// orderIndex resolves order ids to their resting location in O(1); it is
// the routing table for cancels, fills and modifies. It stays bijective
// with the union of the side books' id sets (CheckConsistency verifies).
type orderIndex struct {
	m *hashmap.Map[uint64, orderRef]
}

func newOrderIndex(capacity int) *orderIndex {
	return &orderIndex{m: hashmap.New[uint64, orderRef](capacity)}
}

func (x *orderIndex) get(id uint64) (orderRef, bool) {
	return x.m.Get(id)
}

// put stores or replaces a ref; duplicate detection is the caller's.
func (x *orderIndex) put(id uint64, ref orderRef) {
	x.m.Set(id, ref)
}

// remove deletes and returns the ref for id, if present.
func (x *orderIndex) remove(id uint64) (orderRef, bool) {
	return x.m.Delete(id)
}

func (x *orderIndex) len() int {
	return x.m.Len()
}

func (x *orderIndex) scan(fn func(id uint64, ref orderRef) bool) {
	x.m.Scan(fn)
}

func (x *orderIndex) reset(capacity int) {
	x.m = hashmap.New[uint64, orderRef](capacity)
}
