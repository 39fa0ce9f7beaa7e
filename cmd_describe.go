package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	describeJSON    bool
	describeColumns []string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file.csv>",
	Short: "Summarize every numeric column of a CSV file",
	Long: `The 'describe' command reads a delimited file with a header row and prints the
descriptive statistics of each column holding numeric values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		table, size, err := loadTableFile(args[0], cfg.CSVSeparator)
		if err != nil {
			return err
		}
		if len(describeColumns) > 0 {
			for _, c := range describeColumns {
				if !slices.Contains(table.Columns, c) {
					return fmt.Errorf("%w: unknown column %q", ErrInvalidInput, c)
				}
			}
			table.Columns = describeColumns
		}
		stats, err := columnStatistics(commandContext(cmd), table, cfg.ColumnWorkers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if describeJSON {
			return writeIndentedJSON(out, stats)
		}
		fmt.Fprintf(out, "%s (%s, %s rows)\n", args[0], humanize.Bytes(uint64(size)), humanize.Comma(int64(len(table.Rows))))
		if len(stats) == 0 {
			fmt.Fprintln(out, "no numeric columns")
			return nil
		}
		fmt.Fprintln(out, renderStats(table.Columns, stats))
		return nil
	},
}

// loadTableFile reads a CSV file that must hold at least one data row.
func loadTableFile(path string, sep byte) (Table, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Table{}, 0, err
	}
	table, err := readTable(f, sep)
	if err != nil {
		return Table{}, 0, fmt.Errorf("%s: %w", path, err)
	}
	if len(table.Rows) == 0 {
		return Table{}, 0, fmt.Errorf("%s: %w", path, ErrEmptyData)
	}
	return table, info.Size(), nil
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "print JSON instead of a table")
	describeCmd.Flags().StringSliceVar(&describeColumns, "column", nil, "restrict to these columns")
}
