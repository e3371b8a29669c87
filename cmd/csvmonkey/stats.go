package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Count rows, cells and bytes of a CSV input",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	src, err := openSource(args)
	if err != nil {
		return err
	}
	defer src.Close()

	r := newReader(src)

	var rows, cells, bytes int64
	minCells, maxCells := -1, 0
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		rows++
		n := row.Len()
		cells += int64(n)
		if minCells < 0 || n < minCells {
			minCells = n
		}
		if n > maxCells {
			maxCells = n
		}
		for i := 0; i < n; i++ {
			bytes += int64(len(row.Cell(i).Bytes()))
		}
	}
	if minCells < 0 {
		minCells = 0
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rows:       %d\n", rows)
	fmt.Fprintf(out, "cells:      %d\n", cells)
	fmt.Fprintf(out, "cell bytes: %d\n", bytes)
	fmt.Fprintf(out, "cells/row:  min %d, max %d\n", minCells, maxCells)
	return nil
}
