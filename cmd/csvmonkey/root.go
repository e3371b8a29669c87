package main

import (
	"fmt"
	"os"

	"github.com/ebudai/csvmonkey"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bufferSize int
	useStream  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "csvmonkey",
	Short: "Streaming CSV toolkit",
	Long: `csvmonkey inspects and converts large CSV files using a zero-copy
streaming parser. Files are memory-mapped by default; stdin (or --stream)
goes through a fixed-capacity buffered source.

Examples:
  csvmonkey stats data.csv
  cat data.csv | csvmonkey stats
  csvmonkey convert --decode data.csv > data.jsonl`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&bufferSize, "buffer-size", csvmonkey.DefaultBufferSize,
		"buffer capacity in bytes for streamed input (bounds the largest parsable row)")
	rootCmd.PersistentFlags().BoolVar(&useStream, "stream", false,
		"read files through a buffered stream instead of a memory mapping")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"trace the refill protocol at debug level")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(convertCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSource opens the positional argument as a ByteSource: a memory-mapped
// file when a path is given, a buffered stream for stdin, "-" or --stream.
func openSource(args []string) (csvmonkey.ByteSource, error) {
	if len(args) == 0 || args[0] == "-" {
		return csvmonkey.NewBufferedSourceSize(os.Stdin, bufferSize), nil
	}
	path := args[0]
	if useStream {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return csvmonkey.NewBufferedSourceSize(f, bufferSize), nil
	}
	src, err := csvmonkey.OpenMapped(path)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return src, nil
}

// newReader builds a Reader with the CLI's diagnostic logger injected.
func newReader(src csvmonkey.ByteSource) *csvmonkey.Reader {
	log := zap.NewNop()
	if verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			log = dev
		}
	}
	return csvmonkey.NewReaderWithOptions(src, csvmonkey.ReaderOptions{Logger: log})
}
