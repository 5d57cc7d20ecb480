package book

import (
	"math/rand"
	"testing"

	"github.com/igrmk/treemap/v2"

	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

// Comparative benchmarks: skiplist side book vs ordered treemap.
// These simulate the reconstruction hot path:
// 1. Insert: building resting price levels
// 2. DepthOf: locating a price inside the visible window
// 3. Project: walking the ten best levels into a snapshot
// 4. Remove: deleting levels as they are consumed

const benchLevels = 1000 // resting price levels per side

func benchPrices() []fixpoint.Price {
	prices := make([]fixpoint.Price, benchLevels)
	for i := range prices {
		prices[i] = px("5.51") + fixpoint.Price(i)*tick
	}
	rand.Shuffle(len(prices), func(i, j int) {
		prices[i], prices[j] = prices[j], prices[i]
	})
	return prices
}

func newBenchTree() *treemap.TreeMap[fixpoint.Price, *priceLevel] {
	return treemap.NewWithKeyCompare[fixpoint.Price, *priceLevel](func(a, b fixpoint.Price) bool {
		return a < b
	})
}

// ============= INSERT BENCHMARKS =============

func BenchmarkCompare_Insert_SideBook(b *testing.B) {
	prices := benchPrices()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sb := newSideBook(Ask)
		for j, p := range prices {
			sb.insert(p, uint64(j+1), 100)
		}
	}
}

func BenchmarkCompare_Insert_TreeMap(b *testing.B) {
	prices := benchPrices()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		tree := newBenchTree()
		for j, p := range prices {
			if lvl, ok := tree.Get(p); ok {
				lvl.add(uint64(j+1), 100)
				continue
			}
			tree.Set(p, newPriceLevel(p, uint64(j+1), 100))
		}
	}
}

// ============= DEPTH LOOKUP BENCHMARKS =============

func BenchmarkCompare_DepthOf_SideBook(b *testing.B) {
	sb := newSideBook(Ask)
	for j, p := range benchPrices() {
		sb.insert(p, uint64(j+1), 100)
	}
	target := px("5.51") + 7*tick // depth 7

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sb.depthOf(target)
	}
}

func BenchmarkCompare_DepthOf_TreeMap(b *testing.B) {
	tree := newBenchTree()
	for j, p := range benchPrices() {
		tree.Set(p, newPriceLevel(p, uint64(j+1), 100))
	}
	target := px("5.51") + 7*tick

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		depth := -1
		it := tree.Iterator()
		for d := 0; it.Valid() && d < TopDepth; d++ {
			if it.Key() == target {
				depth = d
				break
			}
			it.Next()
		}
		_ = depth
	}
}

// ============= PROJECTION BENCHMARKS =============

func BenchmarkCompare_Project_SideBook(b *testing.B) {
	sb := newSideBook(Ask)
	for j, p := range benchPrices() {
		sb.insert(p, uint64(j+1), 100)
	}
	var dst [TopDepth]Level

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sb.topInto(&dst)
	}
}

func BenchmarkCompare_Project_TreeMap(b *testing.B) {
	tree := newBenchTree()
	for j, p := range benchPrices() {
		tree.Set(p, newPriceLevel(p, uint64(j+1), 100))
	}
	var dst [TopDepth]Level

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		it := tree.Iterator()
		for d := 0; d < TopDepth; d++ {
			if it.Valid() {
				dst[d] = it.Value().level()
				it.Next()
			} else {
				dst[d] = Level{}
			}
		}
	}
}

// ============= REMOVE BENCHMARKS =============

func BenchmarkCompare_Remove_SideBook(b *testing.B) {
	prices := benchPrices()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		sb := newSideBook(Ask)
		for j, p := range prices {
			sb.insert(p, uint64(j+1), 100)
		}
		b.StartTimer()

		for j := 0; j < benchLevels/2; j++ {
			sb.remove(prices[j], uint64(j+1), 100)
		}
	}
}

func BenchmarkCompare_Remove_TreeMap(b *testing.B) {
	prices := benchPrices()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tree := newBenchTree()
		for j, p := range prices {
			tree.Set(p, newPriceLevel(p, uint64(j+1), 100))
		}
		b.StartTimer()

		for j := 0; j < benchLevels/2; j++ {
			tree.Del(prices[j])
		}
	}
}
