package mbp

import (
	"io"
	"testing"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

func BenchmarkWriteRow(b *testing.B) {
	s := sampleSnapshot()
	for i := 0; i < book.TopDepth; i++ {
		s.Bids[i] = book.Level{Price: fixpoint.MustParse("5.51") - fixpoint.Price(i)*10000000, Size: 100, Count: 3}
		s.Asks[i] = book.Level{Price: fixpoint.MustParse("5.52") + fixpoint.Price(i)*10000000, Size: 100, Count: 3}
	}

	w := NewWriter(io.Discard)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := w.Write(s); err != nil {
			b.Fatal(err)
		}
	}
}
