package main

import (
	"context"
	"slices"
	"strings"
	"testing"
)

func TestReadTable(t *testing.T) {
	input := "\ufeffname,score,\"weight, kg\"\r\nann,10,\"61.5\"\n\nbob,n/a,70\ncid,30\n"
	table, err := readTable(strings.NewReader(input), ',')
	if err != nil {
		t.Fatalf("readTable error: %v", err)
	}
	if !slices.Equal(table.Columns, []string{"name", "score", "weight, kg"}) {
		t.Fatalf("unexpected columns: %q", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["weight, kg"] != "61.5" {
		t.Fatalf("unexpected quoted cell: %q", table.Rows[0]["weight, kg"])
	}
	if got, ok := table.Rows[2]["weight, kg"]; !ok || got != "" {
		t.Fatalf("short row should get empty cell, got %q %v", got, ok)
	}
}

func TestReadTableSeparator(t *testing.T) {
	table, err := readTable(strings.NewReader("a;b\n1;2\n3;4"), ';')
	if err != nil {
		t.Fatalf("readTable error: %v", err)
	}
	if !slices.Equal(table.columnValues("b"), []float64{2, 4}) {
		t.Fatalf("unexpected values: %v", table.columnValues("b"))
	}
}

func TestReadTableUnterminatedQuote(t *testing.T) {
	if _, err := readTable(strings.NewReader("a,b\n\"1,2\n"), ','); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestColumnValuesSkipsNonNumeric(t *testing.T) {
	table, err := readTable(strings.NewReader("v\n1\n x \n2.5\nNaN\nInf\n 3 \n"), ',')
	if err != nil {
		t.Fatalf("readTable error: %v", err)
	}
	if got := table.columnValues("v"); !slices.Equal(got, []float64{1, 2.5, 3}) {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestColumnStatistics(t *testing.T) {
	table, err := readTable(strings.NewReader("name,a,b\nx,1,10\ny,2,20\nz,3,\n"), ',')
	if err != nil {
		t.Fatalf("readTable error: %v", err)
	}
	stats, err := columnStatistics(context.Background(), table, 2)
	if err != nil {
		t.Fatalf("columnStatistics error: %v", err)
	}
	if _, ok := stats["name"]; ok {
		t.Fatalf("non-numeric column should be omitted")
	}
	if stats["a"].Count != 3 || stats["a"].Mean != 2 {
		t.Fatalf("unexpected stats for a: %#v", stats["a"])
	}
	if stats["b"].Count != 2 || stats["b"].Mean != 15 {
		t.Fatalf("unexpected stats for b: %#v", stats["b"])
	}
}

func TestColumnStatisticsCancelled(t *testing.T) {
	table, err := readTable(strings.NewReader("a\n1\n"), ',')
	if err != nil {
		t.Fatalf("readTable error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := columnStatistics(ctx, table, 1); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
