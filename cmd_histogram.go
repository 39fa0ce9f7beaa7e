package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var (
	histogramColumn string
	histogramBinsN  int
	histogramJSON   bool
)

var histogramCmd = &cobra.Command{
	Use:   "histogram <file.csv>",
	Short: "Bin one numeric column of a CSV file",
	Long:  `The 'histogram' command splits the numeric values of a CSV column into equal-width bins.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		table, _, err := loadTableFile(args[0], cfg.CSVSeparator)
		if err != nil {
			return err
		}
		col := histogramColumn
		if col == "" {
			col = table.Columns[0]
		}
		if !slices.Contains(table.Columns, col) {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidInput, col)
		}
		bins := histogramBinsN
		if bins == 0 {
			bins = cfg.DefaultBins
		}
		if bins > maxHistogramBins {
			return fmt.Errorf("%w: bins must not exceed %d", ErrInvalidInput, maxHistogramBins)
		}
		hist, err := buildHistogram(table.columnValues(col), bins)
		if err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		if histogramJSON {
			return writeIndentedJSON(cmd.OutOrStdout(), hist)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderHistogram(hist))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(histogramCmd)
	histogramCmd.Flags().StringVar(&histogramColumn, "column", "", "column to bin (default: first column)")
	histogramCmd.Flags().IntVarP(&histogramBinsN, "bins", "b", 0, "number of bins (default: DEFAULT_BINS)")
	histogramCmd.Flags().BoolVar(&histogramJSON, "json", false, "print JSON instead of a table")
}
