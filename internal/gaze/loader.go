package gaze

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of the gaze dataset.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new gaze dataset loader.
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads records from a dataset file (CSV or Parquet).
func (l *Loader) Load() (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".csv":
		return l.loadCSV()
	case ".parquet":
		return l.loadParquet()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}
}

// loadCSV loads records from a CSV file.
func (l *Loader) loadCSV() (*Dataset, error) {
	slog.Debug("Opening gaze CSV file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open gaze data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read gaze data header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.TrimSpace(col)] = i
	}

	for _, required := range []string{"testSet", "questionImage", "timestamp"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("gaze data is missing required column %s", required)
		}
	}

	sampleColumns := discoverSampleColumns(cols)
	slog.Debug("Discovered gaze sample columns", "count", sampleColumns)

	dataset := &Dataset{SampleColumns: sampleColumns}

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read gaze data row %d: %w", rowNum, err)
		}
		rowNum++

		record := Record{
			TestSet:       row[cols["testSet"]],
			QuestionImage: row[cols["questionImage"]],
			Timestamp:     row[cols["timestamp"]],
			Samples:       make([]Sample, 0, sampleColumns),
		}

		for i := 1; i <= sampleColumns; i++ {
			x, hasX := parseCell(row, cols, fmt.Sprintf("gaze%dX", i))
			y, hasY := parseCell(row, cols, fmt.Sprintf("gaze%dY", i))
			ts, hasTime := parseCell(row, cols, fmt.Sprintf("gaze%dTime", i))

			record.Samples = append(record.Samples, Sample{
				X:       x,
				Y:       y,
				Time:    ts,
				HasXY:   hasX && hasY,
				HasTime: hasTime,
			})
		}

		dataset.Records = append(dataset.Records, record)
	}

	slog.Debug("Finished reading gaze CSV", "total_records", len(dataset.Records))

	return dataset, nil
}

// discoverSampleColumns finds how many gaze{i}X columns the header carries,
// counting up from 1 until a gap.
func discoverSampleColumns(cols map[string]int) int {
	n := 0
	for i := 1; i <= MaxGazeSamples; i++ {
		if _, ok := cols[fmt.Sprintf("gaze%dX", i)]; !ok {
			break
		}
		n = i
	}
	return n
}

// parseCell parses one float cell; an empty or malformed cell counts as a
// missing value.
func parseCell(row []string, cols map[string]int, name string) (float64, bool) {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return 0, false
	}
	raw := strings.TrimSpace(row[idx])
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// loadParquet loads records from a Parquet file. Column names are mapped
// through the file schema rather than a fixed struct since the number of
// gaze sample columns varies by export.
func (l *Loader) loadParquet() (*Dataset, error) {
	slog.Debug("Opening gaze parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	// Map leaf column names to their column indexes in the file schema.
	cols := make(map[string]int)
	for i, path := range pf.Schema().Columns() {
		cols[path[len(path)-1]] = i
	}

	for _, required := range []string{"testSet", "questionImage", "timestamp"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("gaze data is missing required column %s", required)
		}
	}

	sampleColumns := discoverSampleColumns(cols)
	dataset := &Dataset{SampleColumns: sampleColumns}

	for _, rowGroup := range pf.RowGroups() {
		rows := rowGroup.Rows()
		buf := make([]parquet.Row, 128) // Read in batches

		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				dataset.Records = append(dataset.Records, rowToRecord(row, cols, sampleColumns))
			}
			if err != nil {
				break
			}
		}

		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("failed to close row reader: %w", err)
		}
	}

	slog.Debug("Finished reading gaze parquet", "total_records", len(dataset.Records))

	return dataset, nil
}

func rowToRecord(row parquet.Row, cols map[string]int, sampleColumns int) Record {
	// Index values by leaf column so lookups do not depend on row ordering.
	byCol := make(map[int]parquet.Value, len(row))
	for _, v := range row {
		byCol[v.Column()] = v
	}

	record := Record{
		TestSet:       stringValue(byCol, cols, "testSet"),
		QuestionImage: stringValue(byCol, cols, "questionImage"),
		Timestamp:     stringValue(byCol, cols, "timestamp"),
		Samples:       make([]Sample, 0, sampleColumns),
	}

	for i := 1; i <= sampleColumns; i++ {
		x, hasX := floatValue(byCol, cols, fmt.Sprintf("gaze%dX", i))
		y, hasY := floatValue(byCol, cols, fmt.Sprintf("gaze%dY", i))
		ts, hasTime := floatValue(byCol, cols, fmt.Sprintf("gaze%dTime", i))

		record.Samples = append(record.Samples, Sample{
			X:       x,
			Y:       y,
			Time:    ts,
			HasXY:   hasX && hasY,
			HasTime: hasTime,
		})
	}

	return record
}

func stringValue(byCol map[int]parquet.Value, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok {
		return ""
	}
	v, ok := byCol[idx]
	if !ok || v.IsNull() {
		return ""
	}
	return v.String()
}

func floatValue(byCol map[int]parquet.Value, cols map[string]int, name string) (float64, bool) {
	idx, ok := cols[name]
	if !ok {
		return 0, false
	}

	v, ok := byCol[idx]
	if !ok || v.IsNull() {
		return 0, false
	}

	switch v.Kind() {
	case parquet.Double:
		return v.Double(), true
	case parquet.Float:
		return float64(v.Float()), true
	case parquet.Int32:
		return float64(v.Int32()), true
	case parquet.Int64:
		return float64(v.Int64()), true
	default:
		return 0, false
	}
}
