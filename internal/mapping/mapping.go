package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Entry pairs a Cityscapes archive filename with the filename the gaze
// dataset refers to it by.
type Entry struct {
	CityscapeName string `parquet:"cityscapeName"`
	ImageName     string `parquet:"imageName"`
}

// Table holds the loaded mapping file.
type Table struct {
	Entries []Entry

	path string
}

// Find locates the mapping file in dir, preferring mapping.csv over
// mapping.parquet.
func Find(dir string) (string, error) {
	for _, name := range []string{"mapping.csv", "mapping.parquet"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no mapping.csv or mapping.parquet found in %s", dir)
}

// Load reads a mapping file (CSV or Parquet, detected by extension).
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return loadCSV(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported mapping format: %s (supported: .csv, .parquet)", ext)
	}
}

func loadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping header: %w", err)
	}

	cityscapeCol, imageCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "cityscapeName":
			cityscapeCol = i
		case "imageName":
			imageCol = i
		}
	}

	if cityscapeCol < 0 || imageCol < 0 {
		return nil, fmt.Errorf("mapping file %s is missing required columns cityscapeName, imageName", path)
	}

	table := &Table{path: path}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping row: %w", err)
		}

		table.Entries = append(table.Entries, Entry{
			CityscapeName: row[cityscapeCol],
			ImageName:     row[imageCol],
		})
	}

	return table, nil
}

func loadParquet(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat mapping file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	table := &Table{path: path}
	rows := make([]Entry, 128) // Read in batches

	for {
		n, err := reader.Read(rows)
		if n > 0 {
			table.Entries = append(table.Entries, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	return table, nil
}

// Lookup builds a cityscapeName -> imageName map from the table.
func (t *Table) Lookup() map[string]string {
	lookup := make(map[string]string, len(t.Entries))
	for _, e := range t.Entries {
		lookup[e.CityscapeName] = e.ImageName
	}
	return lookup
}

// Names returns every cityscapeName in the table.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		names = append(names, e.CityscapeName)
	}
	return names
}

// Copy writes a copy of the mapping file to dst.
func (t *Table) Copy(dst string) error {
	src, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create mapping copy: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to copy mapping file: %w", err)
	}

	return nil
}
