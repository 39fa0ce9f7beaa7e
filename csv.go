package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/gwenn/yacr"
	"golang.org/x/sync/errgroup"
)

// Table is a delimited file read into memory: the header order is kept in
// Columns and every data row maps a column name to its raw cell.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

func readTable(r io.Reader, sep byte) (Table, error) {
	sc := yacr.NewReader(r, sep, true, false)
	var t Table
	var record []string
	for sc.Scan() {
		record = append(record, sc.Text())
		if !sc.EndOfRecord() {
			continue
		}
		if !(len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			t.add(record)
		}
		record = record[:0]
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("read csv line %d: %w", sc.LineNumber(), err)
	}
	return t, nil
}

func (t *Table) add(record []string) {
	if t.Columns == nil {
		t.Columns = make([]string, 0, len(record))
		for i, name := range record {
			if i == 0 {
				name = strings.TrimPrefix(name, "\ufeff")
			}
			if !slices.Contains(t.Columns, name) {
				t.Columns = append(t.Columns, name)
			}
		}
		return
	}
	row := make(map[string]string, len(t.Columns))
	for i, name := range t.Columns {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// columnValues returns the numeric cells of col in row order.
func (t Table) columnValues(col string) []float64 {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := parseCell(row[col]); ok {
			values = append(values, v)
		}
	}
	return values
}

// columnStatistics computes Stats for every column holding at least one
// numeric cell, at most workers columns at a time.
func columnStatistics(ctx context.Context, t Table, workers int) (map[string]Stats, error) {
	out := make(map[string]Stats, len(t.Columns))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, col := range t.Columns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := calculateStatistics(t.columnValues(col))
			if errors.Is(err, ErrEmptyData) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("column %q: %w", col, err)
			}
			mu.Lock()
			out[col] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
