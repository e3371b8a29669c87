// Package csvmonkey provides a high-throughput streaming CSV row parser.
// Rows are parsed in place against a sliding window of source bytes: cell
// values are zero-copy views into the window, valid until the next ReadRow
// call. Input is fixed to comma-separated, double-quote-delimited values with
// LF row terminators.
package csvmonkey

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// parseState enumerates the row state machine's states.
type parseState int

const (
	stateCellStart parseState = iota
	stateInUnquotedCell
	stateInQuotedCell
	stateEscapeOrEnd
)

// parseOutcome is the result of one parse attempt over the current window.
type parseOutcome int

const (
	rowComplete   parseOutcome = iota // a full row was recognized and committed
	needMoreData                      // the window ended mid-row; position not committed
	noRow                             // end of input with nothing left to parse
	rowTruncated                      // end of input inside a quoted cell
	tooManyCells                      // the row overflows the cell capacity
)

// Reader drives the span scanners and a [ByteSource] to recognize one CSV row
// at a time. A Reader must not be shared between goroutines, and exactly one
// Reader should borrow from a given source.
type Reader struct {
	src ByteSource
	row Row

	win []byte // current window, rebound after every refill
	pos int    // committed parse position within win

	unquoted *spanner // stop set {',', '\r', '\n'}
	quoted   *spanner // stop set {'"'}

	parseFloat FloatFunc
	log        *zap.Logger
	rowNum     int64
}

// ReaderOptions contains extended configuration options for [Reader].
type ReaderOptions struct {
	// CellCapacity bounds the number of cells per row. Rows with more
	// cells fail with ErrTooManyCells. Default is DefaultCellCapacity.
	CellCapacity int

	// ParseFloat is the numeric conversion backend handed to every Cell.
	// Default is strconv.ParseFloat over the raw span.
	ParseFloat FloatFunc

	// Logger receives debug traces of the refill protocol. Default is a
	// no-op logger; there is no package-level debug state.
	Logger *zap.Logger
}

// NewReader returns a Reader over src with default options.
func NewReader(src ByteSource) *Reader {
	return NewReaderWithOptions(src, ReaderOptions{})
}

// NewReaderWithOptions returns a Reader over src with the given options.
func NewReaderWithOptions(src ByteSource, opts ReaderOptions) *Reader {
	cellCap := opts.CellCapacity
	if cellCap <= 0 {
		cellCap = DefaultCellCapacity
	}
	parseFloat := opts.ParseFloat
	if parseFloat == nil {
		parseFloat = parseFloatStrconv
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		src:        src,
		row:        Row{cells: make([]Cell, cellCap)},
		win:        src.Window(),
		unquoted:   newSpanner(',', '\r', '\n'),
		quoted:     newSpanner('"'),
		parseFloat: parseFloat,
		log:        log,
	}
}

// ReadRow parses and returns the next row. The returned row is overwritten in
// place by the following call; cells must not be retained across calls.
//
// End of input is reported as [io.EOF]. A final row without a trailing
// newline is emitted, with end of input acting as the row terminator; input
// ending inside a quoted cell fails with [ErrTruncatedRow]. Rows that cannot
// fit the source's buffer fail with [ErrRowTooLarge], rows with too many
// cells with [ErrTooManyCells]. All parse failures are wrapped in
// [*ParseError] carrying the row number.
func (r *Reader) ReadRow() (*Row, error) {
	for {
		switch r.tryParse(false) {
		case rowComplete:
			r.rowNum++
			return &r.row, nil
		case tooManyCells:
			return nil, &ParseError{Row: r.rowNum + 1, Err: ErrTooManyCells}
		}

		// The window ended mid-row. Preserve the unconsumed tail, ask the
		// source for more bytes and retry from the start of the row.
		keep := len(r.win) - r.pos
		more, err := r.src.Refill(keep)
		r.win = r.src.Window()
		r.pos = 0
		if err != nil {
			if errors.Is(err, ErrRowTooLarge) {
				return nil, &ParseError{Row: r.rowNum + 1, Err: ErrRowTooLarge}
			}
			return nil, errors.Wrap(err, "refill")
		}
		r.log.Debug("refilled window",
			zap.Int("keep", keep),
			zap.Int("window", len(r.win)),
			zap.Bool("more", more))

		if more && len(r.win) > keep {
			continue
		}

		// Source exhausted (or sliding produced no new bytes): one final
		// pass with end of input acting as the row terminator.
		switch r.tryParse(true) {
		case rowComplete:
			r.rowNum++
			return &r.row, nil
		case noRow:
			return nil, io.EOF
		case rowTruncated:
			return nil, &ParseError{Row: r.rowNum + 1, Err: ErrTruncatedRow}
		default: // tooManyCells
			return nil, &ParseError{Row: r.rowNum + 1, Err: ErrTooManyCells}
		}
	}
}

// ReadAll reads every remaining row, materializing cells into strings.
// A successful call returns err == nil, not err == io.EOF.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, row.Strings())
	}
}

// tryParse attempts to recognize one row starting at the committed position.
// On rowComplete the position advances past the row; every other outcome
// leaves it untouched, so a retry after refill restarts from the row start.
//
// With final set, end of window terminates the row instead of aborting the
// attempt: the source is known to be exhausted and no refill can help.
func (r *Reader) tryParse(final bool) parseOutcome {
	win := r.win
	end := len(win)
	p := r.pos
	cellStart := p

	r.row.count = 0
	state := stateCellStart

	for {
		switch state {
		case stateCellStart:
			// Leading carriage returns are skipped here; a CR inside an
			// unquoted cell instead terminates the cell like a comma.
			for p < end && win[p] == '\r' {
				p++
			}
			if p >= end {
				if !final {
					return needMoreData
				}
				if r.row.count == 0 {
					// Nothing but (possibly) trailing CRs: clean end.
					return noRow
				}
				// Input ended right after a separator: trailing empty cell.
				if !r.emit(win, p, p) {
					return tooManyCells
				}
				r.pos = p
				return rowComplete
			}
			cellStart = p
			if win[p] == '"' {
				p++
				cellStart = p
				state = stateInQuotedCell
			} else {
				state = stateInUnquotedCell
			}

		case stateInUnquotedCell:
			if p >= end {
				if !final {
					return needMoreData
				}
				if !r.emit(win, cellStart, end) {
					return tooManyCells
				}
				r.pos = end
				return rowComplete
			}
			rc := r.probe(r.unquoted, p)
			if rc > 0 {
				p += rc
				continue
			}
			if !r.emit(win, cellStart, p) {
				return tooManyCells
			}
			if win[p] == '\n' {
				r.pos = p + 1
				return rowComplete
			}
			// Comma or CR: consume it and start the next cell.
			p++
			state = stateCellStart

		case stateInQuotedCell:
			if p >= end {
				if final {
					return rowTruncated
				}
				return needMoreData
			}
			rc := r.probe(r.quoted, p)
			if rc == probeWidth {
				p += probeWidth
				continue
			}
			p += rc + 1
			state = stateEscapeOrEnd

		case stateEscapeOrEnd:
			// p sits just past a candidate closing quote; the cell span
			// excludes that quote.
			if p >= end {
				if !final {
					return needMoreData
				}
				if !r.emit(win, cellStart, p-1) {
					return tooManyCells
				}
				r.pos = p
				return rowComplete
			}
			switch win[p] {
			case ',':
				if !r.emit(win, cellStart, p-1) {
					return tooManyCells
				}
				p++
				state = stateCellStart
			case '\n':
				if !r.emit(win, cellStart, p-1) {
					return tooManyCells
				}
				r.pos = p + 1
				return rowComplete
			default:
				// Doubled quote or any other byte: the quote was literal
				// content, resume scanning for the real closing quote.
				p++
				state = stateInQuotedCell
			}
		}
	}
}

// emit appends the cell [start, end) to the row being built. It reports false
// when the row is already at capacity.
func (r *Reader) emit(win []byte, start, end int) bool {
	if r.row.count >= len(r.row.cells) {
		return false
	}
	r.row.cells[r.row.count] = Cell{raw: win[start:end], parse: r.parseFloat}
	r.row.count++
	return true
}

// probe scans one probeWidth chunk at offset p. Tails shorter than the probe
// width go through a zero-padded chunk; NUL is never a stop byte, so padding
// can't report a phantom stop.
func (r *Reader) probe(s *spanner, p int) int {
	if len(r.win)-p >= probeWidth {
		return s.scan(r.win[p : p+probeWidth])
	}
	var pad [probeWidth]byte
	copy(pad[:], r.win[p:])
	return s.scan(pad[:])
}
