package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = cellStyle.Foreground(lipgloss.Color("244"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

type metric struct {
	name  string
	value func(Stats) string
}

var statsMetrics = []metric{
	{"count", func(s Stats) string { return strconv.Itoa(s.Count) }},
	{"sum", func(s Stats) string { return formatFloat(s.Sum) }},
	{"mean", func(s Stats) string { return formatFloat(s.Mean) }},
	{"median", func(s Stats) string { return formatFloat(s.Median) }},
	{"mode", func(s Stats) string { return formatFloat(s.Mode) }},
	{"variance", func(s Stats) string { return formatFloat(s.Variance) }},
	{"stdDev", func(s Stats) string { return formatFloat(s.StdDev) }},
	{"min", func(s Stats) string { return formatFloat(s.Min) }},
	{"max", func(s Stats) string { return formatFloat(s.Max) }},
	{"range", func(s Stats) string { return formatFloat(s.Range) }},
	{"q1", func(s Stats) string { return formatFloat(s.Q1) }},
	{"q3", func(s Stats) string { return formatFloat(s.Q3) }},
	{"iqr", func(s Stats) string { return formatFloat(s.IQR) }},
	{"skewness", func(s Stats) string { return formatOptional(s.Skewness) }},
	{"coefficientOfVariation", func(s Stats) string { return formatOptional(s.CoefficientOfVariation) }},
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(p *float64) string {
	if p == nil {
		return "undefined"
	}
	return formatFloat(*p)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})
}

// renderStats lays out one column per dataset and one row per metric.
// Datasets missing from stats are left out.
func renderStats(names []string, stats map[string]Stats) string {
	var shown []string
	for _, name := range names {
		if _, ok := stats[name]; ok {
			shown = append(shown, name)
		}
	}
	t := newTable(append([]string{"metric"}, shown...)...)
	for _, m := range statsMetrics {
		row := []string{m.name}
		for _, name := range shown {
			row = append(row, m.value(stats[name]))
		}
		t.Row(row...)
	}
	return t.Render()
}

func renderHistogram(hist []HistogramBin) string {
	t := newTable("#", "interval", "count", "%", "")
	for i, b := range hist {
		closing := ")"
		if i == len(hist)-1 {
			closing = "]"
		}
		t.Row(
			strconv.Itoa(i+1),
			fmt.Sprintf("[%s, %s%s", formatFloat(round(b.BinStart, statsPrecision)), formatFloat(round(b.BinEnd, statsPrecision)), closing),
			strconv.Itoa(b.Count),
			fmt.Sprintf("%.2f", b.Percentage),
			strings.Repeat("█", int(b.Percentage/2)),
		)
	}
	return t.Render()
}
