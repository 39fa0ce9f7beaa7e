package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var calcJSON bool

var calcCmd = &cobra.Command{
	Use:   "calc <number>...",
	Short: "Statistics of numbers given as arguments",
	Long:  `The 'calc' command prints the descriptive statistics of the numbers passed on the command line.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make([]float64, 0, len(args))
		for _, a := range args {
			v, ok := parseCell(a)
			if !ok {
				return fmt.Errorf("%w: %q is not a finite number", ErrInvalidInput, a)
			}
			values = append(values, v)
		}
		stats, err := calculateStatistics(values)
		if err != nil {
			return err
		}
		if calcJSON {
			return writeIndentedJSON(cmd.OutOrStdout(), stats)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderStats([]string{"values"}, map[string]Stats{"values": stats}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "print JSON instead of a table")
}
