package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const defaultBins = 10

// HistogramBin counts the values in [BinStart, BinEnd). The last bin of a
// histogram is closed on both ends so the maximum is counted.
type HistogramBin struct {
	BinStart   float64 `json:"binStart"`
	BinEnd     float64 `json:"binEnd"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// buildHistogram splits [min, max] of samples into bins equal-width bins.
// When every value is the same the range has no width, and a single bin
// [min, max] holds all of them whatever bins asked for.
func buildHistogram(samples []float64, bins int) ([]HistogramBin, error) {
	if bins < 1 {
		return nil, fmt.Errorf("%w: bins must be a positive integer, got %d", ErrInvalidInput, bins)
	}
	if len(samples) == 0 {
		return nil, ErrEmptyData
	}
	if err := requireFinite(samples); err != nil {
		return nil, err
	}
	lo := floats.Min(samples)
	hi := floats.Max(samples)
	total := float64(len(samples))

	if lo == hi {
		return []HistogramBin{{BinStart: lo, BinEnd: hi, Count: len(samples), Percentage: 100}}, nil
	}

	// A range wider than MaxFloat64 is binned at half scale so every edge and
	// offset stays finite.
	scale := 1.0
	if !isFinite(hi - lo) {
		scale = 2
	}
	base := lo / scale
	binSize := (hi/scale - base) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].BinStart = (base + float64(i)*binSize) * scale
		out[i].BinEnd = (base + float64(i+1)*binSize) * scale
	}
	out[0].BinStart = lo
	out[bins-1].BinEnd = hi

	last := float64(bins - 1)
	for _, v := range samples {
		pos := math.Floor((v/scale - base) / binSize)
		switch {
		case pos >= last:
			pos = last
		case !(pos >= 0):
			pos = 0
		}
		out[int(pos)].Count++
	}
	for i := range out {
		out[i].Percentage = round(float64(out[i].Count)/total*100, 2)
	}
	return out, nil
}
