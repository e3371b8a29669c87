package main

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var convertDecode bool

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert CSV to JSON lines (one array per row)",
	Long: `Convert emits one JSON array per CSV row. By default cell bytes are
emitted as stored; with --decode, doubled quotes are collapsed and CRLF pairs
normalized first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertDecode, "decode", false, "undo RFC 4180 quote doubling in cell values")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src, err := openSource(args)
	if err != nil {
		return err
	}
	defer src.Close()

	r := newReader(src)
	enc := json.NewEncoder(cmd.OutOrStdout())

	record := make([]string, 0, 64)
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		record = record[:0]
		for i := 0; i < row.Len(); i++ {
			if convertDecode {
				record = append(record, row.Cell(i).Decoded())
			} else {
				record = append(record, row.Cell(i).String())
			}
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
}
