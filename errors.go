package main

import "errors"

var (
	// ErrEmptyData is returned when no numeric values remain after filtering.
	ErrEmptyData = errors.New("no valid numeric data")
	// ErrInvalidInput covers malformed request shapes and out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUndefinedStatistic marks a statistic whose formula divides by zero.
	ErrUndefinedStatistic = errors.New("undefined statistic")
)
