// Package mbp serializes depth snapshots into MBP-10 CSV rows.
//
// The row layout is fixed: a monotonically increasing row index, the
// fourteen metadata columns, ten bid levels, ten ask levels (price, size,
// count each), then symbol and order id. Price cells are decimal strings
// with trailing zeros trimmed and are left empty when the price is zero;
// size and count cells are plain integers and print "0" rather than an
// empty cell.
package mbp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	book "github.com/aryandadwal2006/mbp-reconstructor"
	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

// ErrInvalidRow reports a snapshot that cannot be serialized as an MBP row.
var ErrInvalidRow = errors.New("mbp: invalid row")

const writeBufferSize = 128 * 1024

// Writer streams MBP-10 rows to an io.Writer. It buffers aggressively and
// reuses one scratch buffer per row, so a call holds no reference to the
// snapshot after it returns. Not safe for concurrent use.
type Writer struct {
	w    *bufio.Writer
	row  []byte
	rows uint64
}

// NewWriter wraps w with a buffered MBP-10 row writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   bufio.NewWriterSize(w, writeBufferSize),
		row: make([]byte, 0, 512),
	}
}

// WriteHeader writes the column header line. The first column is the
// unnamed row index, matching the MBP-10 reference layout.
func (w *Writer) WriteHeader() error {
	if _, err := w.w.WriteString(headerLine); err != nil {
		return fmt.Errorf("mbp: write header: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("mbp: write header: %w", err)
	}
	return nil
}

// Write validates s, serializes it as one CSV row and assigns it the next
// row index. Rows are indexed from zero in write order.
func (w *Writer) Write(s *book.Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}

	row := w.row[:0]
	row = strconv.AppendUint(row, w.rows, 10)
	row = append(row, ',')
	row = append(row, s.TsRecv...)
	row = append(row, ',')
	row = append(row, s.TsEvent...)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.RType), 10)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.PublisherID), 10)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.InstrumentID), 10)
	row = append(row, ',')
	row = append(row, byte(s.Action))
	row = append(row, ',')
	row = append(row, byte(s.Side))
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.Depth), 10)
	row = append(row, ',')
	row = fixpoint.Append(row, s.Price)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.Size), 10)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(s.Flags), 10)
	row = append(row, ',')
	row = strconv.AppendInt(row, s.TsInDelta, 10)
	row = append(row, ',')
	row = strconv.AppendUint(row, s.Sequence, 10)
	for i := 0; i < book.TopDepth; i++ {
		row = appendLevel(row, &s.Bids[i])
	}
	for i := 0; i < book.TopDepth; i++ {
		row = appendLevel(row, &s.Asks[i])
	}
	row = append(row, ',')
	row = append(row, s.Symbol...)
	row = append(row, ',')
	row = strconv.AppendUint(row, s.OrderID, 10)
	row = append(row, '\n')
	w.row = row

	if _, err := w.w.Write(row); err != nil {
		return fmt.Errorf("mbp: write row %d: %w", w.rows, err)
	}
	w.rows++
	return nil
}

// Flush drains the internal buffer to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("mbp: flush: %w", err)
	}
	return nil
}

// Rows returns the number of rows written so far, excluding the header.
func (w *Writer) Rows() uint64 {
	return w.rows
}

func appendLevel(row []byte, lvl *book.Level) []byte {
	row = append(row, ',')
	row = fixpoint.Append(row, lvl.Price)
	row = append(row, ',')
	row = strconv.AppendUint(row, lvl.Size, 10)
	row = append(row, ',')
	row = strconv.AppendUint(row, uint64(lvl.Count), 10)
	return row
}

// validate mirrors the reader's field contract: timestamps are required on
// every row except a clear, which carries whatever the clear event had.
func validate(s *book.Snapshot) error {
	switch {
	case s.Action != book.Clear && (s.TsRecv == "" || s.TsEvent == ""):
		return fmt.Errorf("%w: empty timestamp", ErrInvalidRow)
	case s.Symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidRow)
	case !s.Action.Valid():
		return fmt.Errorf("%w: action %q", ErrInvalidRow, byte(s.Action))
	case !s.Side.Valid():
		return fmt.Errorf("%w: side %q", ErrInvalidRow, byte(s.Side))
	}
	return nil
}

// headerLine is assembled once at init so the per-level column names stay
// in lockstep with book.TopDepth.
var headerLine = buildHeader()

func buildHeader() string {
	h := make([]byte, 0, 512)
	h = append(h, ",ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,depth,price,size,flags,ts_in_delta,sequence"...)
	for i := 0; i < book.TopDepth; i++ {
		h = appendLevelHeader(h, "bid", i)
	}
	for i := 0; i < book.TopDepth; i++ {
		h = appendLevelHeader(h, "ask", i)
	}
	h = append(h, ",symbol,order_id"...)
	return string(h)
}

func appendLevelHeader(h []byte, side string, i int) []byte {
	for _, col := range [...]string{"px", "sz", "ct"} {
		h = append(h, ',')
		h = append(h, side...)
		h = append(h, '_')
		h = append(h, col...)
		h = append(h, '_')
		if i < 10 {
			h = append(h, '0')
		}
		h = strconv.AppendInt(h, int64(i), 10)
	}
	return h
}
