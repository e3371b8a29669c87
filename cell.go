package csvmonkey

import (
	"strconv"
	"unsafe"
)

// DefaultCellCapacity is the cell capacity of a [Row] created by [NewReader].
const DefaultCellCapacity = 256

// FloatFunc parses a byte span as a float64. It is the pluggable numeric
// conversion backend of a [Reader]; the default is [strconv.ParseFloat].
type FloatFunc func([]byte) (float64, error)

// parseFloatStrconv is the default FloatFunc. The unsafe.String conversion is
// safe because ParseFloat does not retain its argument.
func parseFloatStrconv(b []byte) (float64, error) {
	if len(b) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(unsafe.String(unsafe.SliceData(b), len(b)), 64)
}

// Cell is a non-owning view of one field's bytes inside a source's window.
// A Cell is valid only until the next ReadRow call on the Reader that
// produced it: every refill may move or overwrite the underlying storage.
//
// Quoted-cell content is stored as it appears in the input: a doubled quote
// ("") stays doubled in Bytes and String. Use Decoded for the unescaped form.
type Cell struct {
	raw   []byte
	parse FloatFunc
}

// Bytes returns the cell's raw byte span, without copying.
func (c Cell) Bytes() []byte {
	return c.raw
}

// String materializes the raw cell bytes.
func (c Cell) String() string {
	return string(c.raw)
}

// Decoded materializes the cell with RFC 4180 escaping undone: doubled
// quotes collapse to one quote and CRLF pairs normalize to LF.
func (c Cell) Decoded() string {
	for i := 0; i < len(c.raw)-1; i++ {
		b := c.raw[i]
		if (b == '"' && c.raw[i+1] == '"') || (b == '\r' && c.raw[i+1] == '\n') {
			return string(decodeCell(c.raw[:i:i], c.raw[i:]))
		}
	}
	return string(c.raw)
}

// decodeCell appends rest to dst, collapsing "" to " and \r\n to \n.
func decodeCell(dst, rest []byte) []byte {
	for i := 0; i < len(rest); i++ {
		b := rest[i]
		if b == '"' && i+1 < len(rest) && rest[i+1] == '"' {
			dst = append(dst, '"')
			i++
		} else if b == '\r' && i+1 < len(rest) && rest[i+1] == '\n' {
			dst = append(dst, '\n')
			i++
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// Equals reports whether the raw cell bytes equal s.
func (c Cell) Equals(s string) bool {
	return string(c.raw) == s
}

// Float64 parses the cell through the reader's numeric backend. Unparsable
// spans return a non-nil error rather than a silent zero.
func (c Cell) Float64() (float64, error) {
	parse := c.parse
	if parse == nil {
		parse = parseFloatStrconv
	}
	return parse(c.raw)
}

// Float64Lenient is the best-effort convenience path: it returns the parsed
// value, or 0 when the cell is not numeric.
func (c Cell) Float64Lenient() float64 {
	v, err := c.Float64()
	if err != nil {
		return 0
	}
	return v
}

// Row is a fixed-capacity ordered sequence of cells. A successful ReadRow
// overwrites the cells in place; the row and every cell in it are invalidated
// by the next ReadRow call.
type Row struct {
	cells []Cell
	count int
}

// Len returns the number of cells in the row.
func (r *Row) Len() int {
	return r.count
}

// Cell returns the i-th cell. It panics when i is out of range.
func (r *Row) Cell(i int) Cell {
	if i < 0 || i >= r.count {
		panic("csvmonkey: cell index out of range")
	}
	return r.cells[i]
}

// Strings materializes every cell. The returned slice owns its memory and
// stays valid after the row is superseded.
func (r *Row) Strings() []string {
	out := make([]string, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.cells[i].String()
	}
	return out
}

// ByValue scans the row for the first cell whose raw bytes equal value.
func (r *Row) ByValue(value string) (Cell, bool) {
	for i := 0; i < r.count; i++ {
		if r.cells[i].Equals(value) {
			return r.cells[i], true
		}
	}
	return Cell{}, false
}
