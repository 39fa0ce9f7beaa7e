package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseJob(t *testing.T) {
	cases := []struct {
		payload string
		want    int64
	}{
		{`{"class":"StatisticsJob","args":[12],"queue":"default"}`, 12},
		{`{"class":"StatisticsJob","args":[" 34 "]}`, 34},
		{`{"class":"StatisticsJob","args":["56","ignored"]}`, 56},
	}
	for _, c := range cases {
		got, err := parseJob(c.payload)
		if err != nil {
			t.Fatalf("parseJob(%s) error: %v", c.payload, err)
		}
		if got != c.want {
			t.Fatalf("parseJob(%s) = %d, want %d", c.payload, got, c.want)
		}
	}
}

func TestParseJobSkipsOtherClasses(t *testing.T) {
	_, err := parseJob(`{"class":"MailerJob","args":[1]}`)
	if !errors.Is(err, errSkipJob) {
		t.Fatalf("expected errSkipJob, got %v", err)
	}
}

func TestParseJobRejectsInvalidPayloads(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"class":"StatisticsJob"}`,
		`{"class":"StatisticsJob","args":[0]}`,
		`{"class":"StatisticsJob","args":[-4]}`,
		`{"class":"StatisticsJob","args":[{"id":1}]}`,
		`{"class":"StatisticsJob","args":["abc"]}`,
	} {
		_, err := parseJob(payload)
		if err == nil {
			t.Fatalf("expected error for %s", payload)
		}
		if errors.Is(err, errSkipJob) {
			t.Fatalf("invalid payload %s must not be treated as skipped", payload)
		}
	}
}

func TestParseInt64(t *testing.T) {
	if v, err := parseInt64(json.RawMessage(`"77"`)); err != nil || v != 77 {
		t.Fatalf("string arg: %d %v", v, err)
	}
	if _, err := parseInt64(json.RawMessage(`""`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty string, got %v", err)
	}
	if _, err := parseInt64(json.RawMessage(`1.5`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for fraction, got %v", err)
	}
}

func TestComputeReport(t *testing.T) {
	rep, err := computeReport([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 4)
	if err != nil {
		t.Fatalf("computeReport error: %v", err)
	}
	if rep.Stats.Mean != 5 || rep.Stats.StdDev != 2 {
		t.Fatalf("unexpected stats: %#v", rep.Stats)
	}
	if len(rep.Histogram) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(rep.Histogram))
	}
	total := 0
	for _, b := range rep.Histogram {
		total += b.Count
	}
	if total != 8 {
		t.Fatalf("histogram counts %d values, want 8", total)
	}

	if _, err := computeReport(nil, 4); !errors.Is(err, ErrEmptyData) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
	if _, err := computeReport([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConsumeSkipsUnprocessableJobs(t *testing.T) {
	reply := "*-1\r\n" +
		"*2\r\n" + bulk("queue:default") + bulk(`{"class":"MailerJob","args":[1]}`) +
		"*2\r\n" + bulk("queue:default") + bulk(`{"class":"StatisticsJob","args":[]}`)
	sent := bytes.NewBuffer(nil)
	rw := bufio.NewReadWriter(bufio.NewReader(strings.NewReader(reply)), bufio.NewWriter(sent))

	done := make(chan struct{})
	go func() {
		consume(context.Background(), rw, nil, Config{DefaultBins: 10}, "queue:default")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("consume did not return after the connection closed")
	}

	if n := strings.Count(sent.String(), "BRPOP"); n != 4 {
		t.Fatalf("expected 4 BRPOP commands, got %d", n)
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepContext(ctx, time.Minute) {
		t.Fatalf("sleepContext should report cancellation")
	}
	if !sleepContext(context.Background(), time.Millisecond) {
		t.Fatalf("sleepContext should complete")
	}
}

func TestRunServiceRejectsBadRedisURL(t *testing.T) {
	if err := runService(context.Background(), nil, Config{RedisURL: "unix:///tmp/redis.sock"}); err == nil {
		t.Fatalf("expected error for unsupported redis url")
	}
}
