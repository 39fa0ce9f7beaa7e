package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	jobClass        = "StatisticsJob"
	brpopTimeout    = "5"
	dialTimeout     = 5 * time.Second
	reconnectDelay  = 2 * time.Second
	connectionPause = 1 * time.Second
)

var errSkipJob = errors.New("job skipped")

type statsJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
}

// datasetReport is everything computed for one stored dataset.
type datasetReport struct {
	Stats     Stats
	Histogram []HistogramBin
}

func computeReport(values []float64, bins int) (datasetReport, error) {
	st, err := calculateStatistics(values)
	if err != nil {
		return datasetReport{}, err
	}
	hist, err := buildHistogram(values, bins)
	if err != nil {
		return datasetReport{}, err
	}
	return datasetReport{Stats: st, Histogram: hist}, nil
}

func processDataset(ctx context.Context, db *sql.DB, cfg Config, datasetID int64) error {
	bins, ok, err := datasetBins(ctx, db, datasetID, cfg.DefaultBins)
	if err != nil {
		return fmt.Errorf("load dataset %d: %w", datasetID, err)
	}
	if !ok {
		return fmt.Errorf("datasets id %d not found", datasetID)
	}
	values, err := fetchSamples(ctx, db, datasetID)
	if err != nil {
		return fmt.Errorf("fetch samples failed: %w", err)
	}

	start := time.Now()
	rep, peak, err := measurePeakResidentMemory(func() (datasetReport, error) {
		return computeReport(values, bins)
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return fmt.Errorf("dataset %d: %w", datasetID, err)
	}

	resultID, err := insertResult(ctx, db, datasetID, rep, elapsed, peak)
	if err != nil {
		return fmt.Errorf("insert result failed: %w", err)
	}
	log.WithFields(log.Fields{
		"dataset":      datasetID,
		"result":       resultID,
		"count":        rep.Stats.Count,
		"bins":         len(rep.Histogram),
		"duration":     fmt.Sprintf("%.6fs", elapsed),
		"memory_bytes": fmt.Sprintf("%.0f", peak),
	}).Info("processed dataset")
	return nil
}

// parseJob returns the dataset id carried by a queue payload, or errSkipJob
// for jobs meant for another worker class.
func parseJob(payload string) (int64, error) {
	var job statsJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return 0, fmt.Errorf("invalid job json: %w", err)
	}
	if job.Class != jobClass {
		return 0, fmt.Errorf("%w: class=%s", errSkipJob, job.Class)
	}
	if len(job.Args) == 0 {
		return 0, fmt.Errorf("job missing dataset id: %s", payload)
	}
	id, err := parseInt64(job.Args[0])
	if err != nil {
		return 0, fmt.Errorf("job dataset id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("job dataset id must be positive, got %d", id)
	}
	return id, nil
}

// parseInt64 reads a job argument encoded either as a JSON number or as a
// quoted decimal string.
func parseInt64(raw json.RawMessage) (int64, error) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, fmt.Errorf("%w: unsupported arg %s", ErrInvalidInput, string(raw))
	}
	asString = strings.TrimSpace(asString)
	if asString == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidInput)
	}
	v, err := strconv.ParseInt(asString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// runService pops dataset jobs from queue:<WORKER_QUEUE> until ctx is done,
// reconnecting to Redis whenever the connection drops.
func runService(ctx context.Context, db *sql.DB, cfg Config) error {
	target, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	queue := "queue:" + cfg.WorkerQueue
	log.Infof("worker listening on %s (redis %s db %d)", queue, target.Addr, target.DB)

	dialer := net.Dialer{Timeout: dialTimeout}
	for ctx.Err() == nil {
		conn, err := dialer.DialContext(ctx, "tcp", target.Addr)
		if err != nil {
			log.Warnf("redis connect failed: %v; retrying in %s", err, reconnectDelay)
			sleepContext(ctx, reconnectDelay)
			continue
		}
		rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
		if err := prepareConnection(rw, target); err != nil {
			log.Warnf("redis setup failed: %v", err)
			conn.Close()
			sleepContext(ctx, reconnectDelay)
			continue
		}
		consume(ctx, rw, db, cfg, queue)
		conn.Close()
		sleepContext(ctx, connectionPause)
	}
	log.Info("worker stopped")
	return nil
}

func prepareConnection(rw *bufio.ReadWriter, target redisTarget) error {
	if target.Password != "" {
		if err := writeCommand(rw, "AUTH", target.Password); err != nil {
			return err
		}
		if err := readOK(rw); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if target.DB != 0 {
		if err := writeCommand(rw, "SELECT", strconv.Itoa(target.DB)); err != nil {
			return err
		}
		if err := readOK(rw); err != nil {
			return fmt.Errorf("select: %w", err)
		}
	}
	return nil
}

// consume runs BRPOP until the connection fails or ctx is done.
func consume(ctx context.Context, rw *bufio.ReadWriter, db *sql.DB, cfg Config, queue string) {
	for ctx.Err() == nil {
		if err := writeCommand(rw, "BRPOP", queue, brpopTimeout); err != nil {
			log.Warnf("redis write error: %v", err)
			return
		}
		_, payload, err := readBRPOP(rw)
		if err != nil {
			log.Warnf("redis read error: %v", err)
			return
		}
		if payload == "" {
			continue
		}
		id, err := parseJob(payload)
		if errors.Is(err, errSkipJob) {
			log.Debug(err)
			continue
		}
		if err != nil {
			log.Warn(err)
			continue
		}
		if err := processDataset(ctx, db, cfg, id); err != nil {
			log.Errorf("process error: %v", err)
		}
	}
}
