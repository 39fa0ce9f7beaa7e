package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

func openDB(ctx context.Context) (*sql.DB, error) {
	dsn, err := buildDSNFromEnv()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not reachable: %w", err)
	}
	return db, nil
}

// datasetBins reports whether the dataset exists and the bin count stored
// for it, falling back when the column is NULL or not positive.
func datasetBins(ctx context.Context, db *sql.DB, datasetID int64, fallback int) (int, bool, error) {
	var bins sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT bins FROM datasets WHERE id = $1", datasetID).Scan(&bins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return normalizePositiveInt(bins.Int64, fallback), true, nil
}

// fetchSamples loads the dataset's values in insertion order. NULL, NaN and
// infinite values are not numeric data and are skipped.
func fetchSamples(ctx context.Context, db *sql.DB, datasetID int64) ([]float64, error) {
	rows, err := db.QueryContext(ctx, "SELECT value FROM samples WHERE dataset_id = $1 ORDER BY id ASC", datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []float64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid && isFinite(v.Float64) {
			values = append(values, v.Float64)
		}
	}
	return values, rows.Err()
}

func normalizePositiveInt(value int64, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return int(value)
}

func nullableFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// insertResult stores a report and its histogram atomically and returns the
// new statistics_results id.
func insertResult(ctx context.Context, db *sql.DB, datasetID int64, rep datasetReport, durationSeconds, memoryBytes float64) (int64, error) {
	const insertStats = `
INSERT INTO statistics_results
  (dataset_id, count, sum, mean, median, mode, variance, standard_deviation, min, max, range,
   q1, q3, iqr, skewness, coefficient_of_variation, duration, memory, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW(),NOW())
RETURNING id`
	const insertBin = `
INSERT INTO histogram_bins
  (statistics_result_id, position, bin_start, bin_end, count, percentage)
VALUES ($1,$2,$3,$4,$5,$6)`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	st := rep.Stats
	var resultID int64
	err = tx.QueryRowContext(ctx, insertStats,
		datasetID, st.Count, st.Sum, st.Mean, st.Median, st.Mode, st.Variance, st.StdDev,
		st.Min, st.Max, st.Range, st.Q1, st.Q3, st.IQR,
		nullableFloat(st.Skewness), nullableFloat(st.CoefficientOfVariation),
		durationSeconds, memoryBytes,
	).Scan(&resultID)
	if err != nil {
		return 0, fmt.Errorf("insert statistics_results: %w", err)
	}
	for i, b := range rep.Histogram {
		if _, err := tx.ExecContext(ctx, insertBin, resultID, i, b.BinStart, b.BinEnd, b.Count, b.Percentage); err != nil {
			return 0, fmt.Errorf("insert histogram_bins[%d]: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return resultID, nil
}
