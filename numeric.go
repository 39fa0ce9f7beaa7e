package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requireFinite(samples []float64) error {
	for i, v := range samples {
		if !isFinite(v) {
			return fmt.Errorf("%w: value %v at index %d is not finite", ErrInvalidInput, v, i)
		}
	}
	return nil
}

// parseCell reads a tabular cell as a number. Surrounding blanks are ignored;
// anything that is not a finite float is rejected.
func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}
