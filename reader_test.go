package csvmonkey

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// readAllRows parses input through a BufferedSource with the given capacity
// (0 means the default) and returns every row materialized.
func readAllRows(t *testing.T, input string, capacity int) ([][]string, error) {
	t.Helper()
	src := NewBufferedSourceSize(strings.NewReader(input), capacity)
	return NewReader(src).ReadAll()
}

func TestReadRowBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "single_row",
			input: "a,b,c\n",
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "multiple_rows",
			input: "a,b\nc,d\ne,f\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		},
		{
			name:  "empty_cells",
			input: "a,,c\n",
			want:  [][]string{{"a", "", "c"}},
		},
		{
			name:  "trailing_comma",
			input: "a,b,\n",
			want:  [][]string{{"a", "b", ""}},
		},
		{
			name:  "empty_line_is_one_empty_cell",
			input: "\n",
			want:  [][]string{{""}},
		},
		{
			name:  "single_cell_rows",
			input: "x\ny\n",
			want:  [][]string{{"x"}, {"y"}},
		},
		{
			name:  "long_cells_cross_probe_width",
			input: strings.Repeat("a", 40) + "," + strings.Repeat("b", 17) + "\n",
			want:  [][]string{{strings.Repeat("a", 40), strings.Repeat("b", 17)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllRows(t, tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRowQuoted(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "quoted_cell",
			input: "\"hello\",world\n",
			want:  [][]string{{"hello", "world"}},
		},
		{
			name:  "embedded_comma_and_newline",
			input: "\"a,b\nc\",d\n",
			want:  [][]string{{"a,b\nc", "d"}},
		},
		{
			// Doubled quotes are stored as-is in the raw span; un-doubling
			// is Cell.Decoded's concern.
			name:  "doubled_quote_kept_raw",
			input: "\"a\"\"b\",c\n",
			want:  [][]string{{"a\"\"b", "c"}},
		},
		{
			name:  "empty_quoted_cell",
			input: "\"\",x\n",
			want:  [][]string{{"", "x"}},
		},
		{
			name:  "quoted_cell_ends_row",
			input: "a,\"b\"\n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "all_cells_quoted",
			input: "\"a\",\"b\",\"c\"\n",
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "quote_longer_than_probe",
			input: "\"" + strings.Repeat("z", 50) + "\",tail\n",
			want:  [][]string{{strings.Repeat("z", 50), "tail"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllRows(t, tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRowDecodedCell(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("\"a\"\"b\",c\n"))
	row, err := NewReader(src).ReadRow()
	require.NoError(t, err)
	require.Equal(t, 2, row.Len())
	assert.Equal(t, "a\"\"b", row.Cell(0).String())
	assert.Equal(t, "a\"b", row.Cell(0).Decoded())
}

// Carriage-return handling is deliberately asymmetric: a CR terminates an
// unquoted cell like a comma would, and leading CRs at cell start are
// skipped. A CRLF row terminator therefore yields a trailing empty cell.
func TestReadRowCarriageReturns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "crlf_terminator_adds_empty_cell",
			input: "a\r\nb\r\n",
			want:  [][]string{{"a", ""}, {"b", ""}},
		},
		{
			name:  "cr_terminates_unquoted_cell",
			input: "a\rb,c\n",
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "leading_crs_skipped",
			input: "\r\ra,b\n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "cr_inside_quoted_cell_kept",
			input: "\"a\rb\",c\n",
			want:  [][]string{{"a\rb", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllRows(t, tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// End of input terminates the final row: a missing trailing newline neither
// drops the row nor fabricates an extra one.
func TestReadRowFinalRowWithoutNewline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "unquoted_final_row",
			input: "a,b\nc,d",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "quoted_final_cell",
			input: "a,\"b\"",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "trailing_separator",
			input: "a,",
			want:  [][]string{{"a", ""}},
		},
		{
			name:  "single_cell",
			input: "x",
			want:  [][]string{{"x"}},
		},
		{
			name:  "trailing_cr_swallowed",
			input: "a,b\n\r",
			want:  [][]string{{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllRows(t, tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRowEmptyInput(t *testing.T) {
	src := NewBufferedSource(strings.NewReader(""))
	_, err := NewReader(src).ReadRow()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRowTruncatedQuote(t *testing.T) {
	for _, input := range []string{"\"abc", "a,\"bc\nd", "\"x\"\""} {
		t.Run(input, func(t *testing.T) {
			src := NewBufferedSource(strings.NewReader(input))
			r := NewReader(src)
			_, err := r.ReadRow()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncatedRow)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, int64(1), perr.Row)

			// The failure is sticky: the position was never committed.
			_, err = r.ReadRow()
			assert.ErrorIs(t, err, ErrTruncatedRow)
		})
	}
}

// A row that straddles a refill boundary must parse identically to the same
// row read in one shot.
func TestReadRowAcrossRefillBoundary(t *testing.T) {
	input := "first,row\nsecond,\"quoted,cell\nwith newline\",tail\nlast,row"
	oneShot, err := readAllRows(t, input, 0)
	require.NoError(t, err)

	for capacity := 64; capacity <= 256; capacity *= 2 {
		got, err := readAllRows(t, input, capacity)
		require.NoError(t, err, "capacity %d", capacity)
		assert.Equal(t, oneShot, got, "capacity %d", capacity)
	}
}

// Readers that deliver a few bytes per call force a refill per byte; results
// must not change.
func TestReadRowShortReads(t *testing.T) {
	input := "a,b,c\n\"d,e\nf\",g\nfinal,row"
	want, err := readAllRows(t, input, 0)
	require.NoError(t, err)

	src := NewBufferedSourceSize(iotest.OneByteReader(strings.NewReader(input)), 64)
	got, err := NewReader(src).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadRowHalfReader(t *testing.T) {
	input := strings.Repeat("aaa,bbb,ccc\n", 50)
	want, err := readAllRows(t, input, 0)
	require.NoError(t, err)

	src := NewBufferedSourceSize(iotest.HalfReader(strings.NewReader(input)), 128)
	got, err := NewReader(src).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// A final unterminated row that exactly fills the buffer is still emitted:
// the window is full, but the stream is exhausted, so end of input acts as
// the row terminator. With a trailing newline the same content genuinely
// exceeds capacity, since the terminator needs a buffer slot of its own.
func TestReadRowExactlyBufferCapacity(t *testing.T) {
	content := strings.Repeat("x", 16)

	rows, err := readAllRows(t, content, 16)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{content}}, rows)

	multi := "a,b\n" + content
	rows, err = readAllRows(t, multi, 16)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {content}}, rows)

	_, err = readAllRows(t, content+"\n", 16)
	assert.ErrorIs(t, err, ErrRowTooLarge)
}

func TestReadRowTooLarge(t *testing.T) {
	// A 40-byte row can never fit a 16-byte buffer.
	input := strings.Repeat("x", 40) + "\nok\n"
	src := NewBufferedSourceSize(strings.NewReader(input), 16)
	r := NewReader(src)
	_, err := r.ReadRow()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRowTooLarge)
}

func TestReadRowTooManyCells(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("a,b,c,d,e\n"))
	r := NewReaderWithOptions(src, ReaderOptions{CellCapacity: 4})
	_, err := r.ReadRow()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyCells)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, int64(1), perr.Row)
}

func TestReadRowAtCellCapacity(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("a,b,c,d\n"))
	r := NewReaderWithOptions(src, ReaderOptions{CellCapacity: 4})
	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 4, row.Len())
}

func TestReadRowDefaultCellCapacity(t *testing.T) {
	// Exactly DefaultCellCapacity cells parses; one more is rejected.
	ok := strings.TrimSuffix(strings.Repeat("x,", DefaultCellCapacity), ",") + "\n"
	rows, err := readAllRows(t, ok, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], DefaultCellCapacity)

	over := strings.TrimSuffix(strings.Repeat("x,", DefaultCellCapacity+1), ",") + "\n"
	_, err = readAllRows(t, over, 0)
	assert.ErrorIs(t, err, ErrTooManyCells)
}

func TestReadRowNumericCells(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("3.14,price,-2e2\n"))
	row, err := NewReader(src).ReadRow()
	require.NoError(t, err)
	require.Equal(t, 3, row.Len())

	v, err := row.Cell(0).Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)

	_, err = row.Cell(1).Float64()
	assert.Error(t, err)
	assert.Equal(t, 0.0, row.Cell(1).Float64Lenient())

	assert.Equal(t, -200.0, row.Cell(2).Float64Lenient())
}

func TestReadRowInjectedFloatFunc(t *testing.T) {
	calls := 0
	src := NewBufferedSource(strings.NewReader("1,2\n"))
	r := NewReaderWithOptions(src, ReaderOptions{
		ParseFloat: func(b []byte) (float64, error) {
			calls++
			return float64(len(b)) * 100, nil
		},
	})
	row, err := r.ReadRow()
	require.NoError(t, err)
	v, err := row.Cell(0).Float64()
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
	assert.Equal(t, 1, calls)
}

func TestReadRowByValueLookup(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("id,name,score\n"))
	row, err := NewReader(src).ReadRow()
	require.NoError(t, err)

	cell, ok := row.ByValue("score")
	require.True(t, ok)
	assert.Equal(t, "score", cell.String())

	_, ok = row.ByValue("absent")
	assert.False(t, ok)
}

// The returned row is overwritten in place by the next call; its previous
// contents are superseded, not retained.
func TestReadRowSupersedesPreviousRow(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("one,1\ntwo,2\n"))
	r := NewReader(src)

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "one", row.Cell(0).String())

	row2, err := r.ReadRow()
	require.NoError(t, err)
	assert.Same(t, row, row2)
	assert.Equal(t, "two", row2.Cell(0).String())
}

func TestReadRowWithLogger(t *testing.T) {
	src := NewBufferedSourceSize(strings.NewReader("a,b\nc,d\n"), 32)
	r := NewReaderWithOptions(src, ReaderOptions{Logger: zaptest.NewLogger(t)})
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}

func TestReadAllStopsAtFirstError(t *testing.T) {
	src := NewBufferedSource(strings.NewReader("a,b\n\"unterminated"))
	rows, err := NewReader(src).ReadAll()
	assert.ErrorIs(t, err, ErrTruncatedRow)
	assert.Equal(t, [][]string{{"a", "b"}}, rows)
}

func TestReadRowZeroCopy(t *testing.T) {
	// Cell spans alias the source's window rather than copies of it.
	src := NewBufferedSource(strings.NewReader("alpha,beta\n"))
	row, err := NewReader(src).ReadRow()
	require.NoError(t, err)

	win := src.Window()
	cell := row.Cell(0).Bytes()
	require.Equal(t, "alpha", string(cell))
	assert.Equal(t, &win[0], &cell[0])
}
