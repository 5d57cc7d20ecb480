package mbo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aryandadwal2006/mbp-reconstructor/fixpoint"
)

var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrMissingColumn = errors.New("missing required column")
)

const (
	// maxLineBytes bounds a single input line.
	maxLineBytes = 1 << 20

	// maxErrorLines caps the recorded line numbers of dropped rows; the
	// dropped-row counter itself is exact.
	maxErrorLines = 1024
)

// ReadStats aggregates what the reader consumed and rejected.
type ReadStats struct {
	RowsParsed  uint64
	RowsDropped uint64
	ErrorLines  []int // 1-based file lines of dropped rows, capped
}

// MarshalZerologObject logs the stats as a structured object.
func (s ReadStats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("rows_parsed", s.RowsParsed)
	e.Uint64("rows_dropped", s.RowsDropped)
	if len(s.ErrorLines) > 0 {
		head := s.ErrorLines
		if len(head) > 10 {
			head = head[:10]
		}
		e.Ints("error_lines", head)
	}
}

// columns maps field names to their header positions; -1 means absent.
type columns struct {
	tsRecv    int
	tsEvent   int
	action    int
	side      int
	price     int
	size      int
	orderID   int
	flags     int
	tsInDelta int
	sequence  int
	symbol    int
}

// Reader streams Events out of MBO CSV data. Column order is taken from
// the header line, so inputs with reordered or extra columns still parse.
// Malformed rows are dropped and recorded, never fatal; only transport
// failures end the stream with an error other than io.EOF.
//
// Next returns a pointer to a reusable Event that is overwritten by the
// following call; callers that retain an event must copy it.
type Reader struct {
	sc     *bufio.Scanner
	cols   columns
	width  int // minimum fields a data row must have
	line   int // 1-based file line most recently consumed
	ev     Event
	fields []string
	stats  ReadStats
}

// NewReader consumes the header line and validates that every required
// column is present.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("mbo: read header: %w", err)
		}
		return nil, fmt.Errorf("mbo: %w", ErrEmptyInput)
	}

	rd := &Reader{
		sc:     sc,
		line:   1,
		fields: make([]string, 0, 40),
	}
	if err := rd.mapHeader(trimCR(sc.Text())); err != nil {
		return nil, err
	}
	return rd, nil
}

func (r *Reader) mapHeader(header string) error {
	r.cols = columns{
		tsRecv: -1, tsEvent: -1, action: -1, side: -1, price: -1,
		size: -1, orderID: -1, flags: -1, tsInDelta: -1, sequence: -1,
		symbol: -1,
	}

	for i, name := range r.split(header) {
		switch strings.TrimSpace(name) {
		case "ts_recv":
			r.cols.tsRecv = i
		case "ts_event":
			r.cols.tsEvent = i
		case "action":
			r.cols.action = i
		case "side":
			r.cols.side = i
		case "price":
			r.cols.price = i
		case "size":
			r.cols.size = i
		case "order_id":
			r.cols.orderID = i
		case "flags":
			r.cols.flags = i
		case "ts_in_delta":
			r.cols.tsInDelta = i
		case "sequence":
			r.cols.sequence = i
		case "symbol":
			r.cols.symbol = i
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{"ts_recv", r.cols.tsRecv},
		{"ts_event", r.cols.tsEvent},
		{"action", r.cols.action},
		{"side", r.cols.side},
		{"order_id", r.cols.orderID},
		{"sequence", r.cols.sequence},
		{"symbol", r.cols.symbol},
	}
	for _, c := range required {
		if c.idx < 0 {
			return fmt.Errorf("mbo: %w: %s", ErrMissingColumn, c.name)
		}
		if c.idx >= r.width {
			r.width = c.idx + 1
		}
	}
	for _, idx := range []int{r.cols.price, r.cols.size, r.cols.flags, r.cols.tsInDelta} {
		if idx >= r.width {
			r.width = idx + 1
		}
	}
	return nil
}

// Next returns the next well-formed event, io.EOF at end of input, or a
// transport error. Rows that fail to parse are skipped with their line
// numbers recorded in Stats.
func (r *Reader) Next() (*Event, error) {
	for r.sc.Scan() {
		r.line++
		if err := r.parseRow(trimCR(r.sc.Text())); err != nil {
			r.stats.RowsDropped++
			if len(r.stats.ErrorLines) < maxErrorLines {
				r.stats.ErrorLines = append(r.stats.ErrorLines, r.line)
			}
			continue
		}
		r.stats.RowsParsed++
		return &r.ev, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("mbo: read line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Stats returns a copy of the running counters; the error-line slice is
// shared and must not be mutated.
func (r *Reader) Stats() ReadStats {
	return r.stats
}

func (r *Reader) parseRow(line string) error {
	fields := r.split(line)
	if len(fields) < r.width {
		return fmt.Errorf("short row: %d fields, want at least %d", len(fields), r.width)
	}

	ev := &r.ev
	ev.Reset()

	actionStr := fieldAt(fields, r.cols.action)
	if len(actionStr) != 1 || !Action(actionStr[0]).Valid() {
		return fmt.Errorf("bad action %q", actionStr)
	}
	ev.Action = Action(actionStr[0])

	sideStr := fieldAt(fields, r.cols.side)
	switch {
	case sideStr == "":
		ev.Side = SideNone
	case len(sideStr) == 1 && Side(sideStr[0]).Valid():
		ev.Side = Side(sideStr[0])
	default:
		return fmt.Errorf("bad side %q", sideStr)
	}

	ev.TsRecv = fieldAt(fields, r.cols.tsRecv)
	ev.TsEvent = fieldAt(fields, r.cols.tsEvent)
	if ev.Action != ActionClear && (ev.TsRecv == "" || ev.TsEvent == "") {
		return errors.New("missing timestamps")
	}

	var err error
	if s := fieldAt(fields, r.cols.price); s != "" {
		if ev.Price, err = fixpoint.Parse(s); err != nil {
			return err
		}
	}
	if s := fieldAt(fields, r.cols.size); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("bad size %q: %w", s, err)
		}
		ev.Size = uint32(n)
	}
	if s := fieldAt(fields, r.cols.orderID); s != "" {
		if ev.OrderID, err = strconv.ParseUint(s, 10, 64); err != nil {
			return fmt.Errorf("bad order_id %q: %w", s, err)
		}
	}
	switch ev.Action {
	case ActionAdd, ActionCancel, ActionFill, ActionModify:
		if ev.OrderID == 0 {
			return errors.New("zero order_id")
		}
	}

	seqStr := fieldAt(fields, r.cols.sequence)
	if seqStr == "" {
		return errors.New("missing sequence")
	}
	if ev.Sequence, err = strconv.ParseUint(seqStr, 10, 64); err != nil {
		return fmt.Errorf("bad sequence %q: %w", seqStr, err)
	}

	if s := fieldAt(fields, r.cols.flags); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("bad flags %q: %w", s, err)
		}
		ev.Flags = uint32(n)
	}
	if s := fieldAt(fields, r.cols.tsInDelta); s != "" {
		if ev.TsInDelta, err = strconv.ParseInt(s, 10, 64); err != nil {
			return fmt.Errorf("bad ts_in_delta %q: %w", s, err)
		}
	}

	ev.Symbol = fieldAt(fields, r.cols.symbol)
	if (ev.Action == ActionAdd || ev.Action == ActionClear) && ev.Symbol == "" {
		return errors.New("missing symbol")
	}
	if ev.Action == ActionAdd && (ev.Price == 0 || ev.Size == 0) {
		return errors.New("add with zero price or size")
	}
	return nil
}

// split cuts line on commas into the reader's reusable field buffer. The
// format carries no quoted fields, so a plain scan is sufficient.
func (r *Reader) split(line string) []string {
	fields := r.fields[:0]
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ',' {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	fields = append(fields, line[start:])
	r.fields = fields
	return fields
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
