package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"github.com/buger/jsonparser"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

const maxHistogramBins = 10000

var errBins = errors.New("bins must be a positive integer")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type calculateResponse struct {
	Success    bool  `json:"success"`
	Statistics Stats `json:"statistics"`
	DataPoints int   `json:"dataPoints"`
}

type histogramResponse struct {
	Success   bool           `json:"success"`
	Histogram []HistogramBin `json:"histogram"`
}

type uploadResponse struct {
	Success    bool                `json:"success"`
	Columns    []string            `json:"columns"`
	RowCount   int                 `json:"rowCount"`
	Statistics map[string]Stats    `json:"statistics"`
	Data       []map[string]string `json:"data"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 error envelope instead of an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(errorResponse{Error: "Internal server error", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warnf("write response: %v", err)
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeInternalError(w http.ResponseWriter, msg string, err error) {
	log.Errorf("%s: %v", msg, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg, Message: err.Error()})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "Statistics API is running"})
}

func (s *apiServer) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	values, err := numericData(body)
	if err != nil {
		writeBadRequest(w, "Invalid data format. Expected array of numbers.")
		return
	}
	stats, err := calculateStatistics(values)
	switch {
	case errors.Is(err, ErrEmptyData):
		writeBadRequest(w, "No valid numeric data provided.")
		return
	case errors.Is(err, ErrInvalidInput):
		writeBadRequest(w, err.Error())
		return
	case err != nil:
		writeInternalError(w, "Internal server error", err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{Success: true, Statistics: stats, DataPoints: len(values)})
}

func (s *apiServer) handleHistogram(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	values, err := numericData(body)
	if err != nil {
		writeBadRequest(w, "Invalid data format")
		return
	}
	bins, err := histogramBins(body, s.cfg.DefaultBins)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	hist, err := buildHistogram(values, bins)
	switch {
	case errors.Is(err, ErrEmptyData):
		writeBadRequest(w, "No valid numeric data")
		return
	case errors.Is(err, ErrInvalidInput):
		writeBadRequest(w, err.Error())
		return
	case err != nil:
		writeInternalError(w, "Internal server error", err)
		return
	}
	writeJSON(w, http.StatusOK, histogramResponse{Success: true, Histogram: hist})
}

func (s *apiServer) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBadRequest(w, fmt.Sprintf("Upload exceeds %s", humanize.Bytes(uint64(tooLarge.Limit))))
			return
		}
		writeBadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	path, size, err := storeUpload(s.cfg.UploadDir, file)
	if err != nil {
		writeInternalError(w, "Error storing uploaded file", err)
		return
	}
	defer removeUpload(path)
	log.WithFields(log.Fields{"file": header.Filename, "size": humanize.Bytes(uint64(size))}).Info("csv upload received")

	f, err := os.Open(path)
	if err != nil {
		writeInternalError(w, "Error parsing CSV file", err)
		return
	}
	defer f.Close()

	table, err := readTable(f, s.cfg.CSVSeparator)
	if err != nil {
		writeInternalError(w, "Error parsing CSV file", err)
		return
	}
	if len(table.Rows) == 0 {
		writeBadRequest(w, "Empty CSV file")
		return
	}
	stats, err := columnStatistics(r.Context(), table, s.cfg.ColumnWorkers)
	if errors.Is(err, ErrInvalidInput) {
		writeBadRequest(w, err.Error())
		return
	}
	if err != nil {
		writeInternalError(w, "Internal server error", err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		Columns:    table.Columns,
		RowCount:   len(table.Rows),
		Statistics: stats,
		Data:       table.Rows,
	})
}

func (s *apiServer) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		return nil, errors.New("Could not read request body")
	}
	if !json.Valid(body) {
		return nil, errors.New("Invalid JSON body")
	}
	return body, nil
}

// numericData extracts the "data" array of a request body, keeping only the
// elements that are finite JSON numbers.
func numericData(body []byte) ([]float64, error) {
	raw, vt, _, err := jsonparser.Get(body, "data")
	if err != nil || vt != jsonparser.Array {
		return nil, fmt.Errorf("%w: data must be an array", ErrInvalidInput)
	}
	values := []float64{}
	_, err = jsonparser.ArrayEach(raw, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
		if vt != jsonparser.Number {
			return
		}
		if v, err := jsonparser.ParseFloat(value); err == nil && isFinite(v) {
			values = append(values, v)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return values, nil
}

// histogramBins reads the optional "bins" field; absent or null means fallback.
func histogramBins(body []byte, fallback int) (int, error) {
	raw, vt, _, err := jsonparser.Get(body, "bins")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || vt == jsonparser.Null {
		return fallback, nil
	}
	if err != nil || vt != jsonparser.Number {
		return 0, errBins
	}
	v, err := jsonparser.ParseFloat(raw)
	if err != nil || v != math.Trunc(v) || v < 1 {
		return 0, errBins
	}
	if v > maxHistogramBins {
		return 0, fmt.Errorf("bins must not exceed %d", maxHistogramBins)
	}
	return int(v), nil
}
