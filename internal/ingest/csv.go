package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AngelCh415/marketing-etl/internal/config"
	"github.com/AngelCh415/marketing-etl/internal/models"
	"github.com/AngelCh415/marketing-etl/internal/utils"
)

// ReadCSV parses a comma-delimited table with one header row. Header names
// are trimmed and unquoted; blank and missing cells are null.
func ReadCSV(r io.Reader, name string) (models.Frame, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err == io.EOF {
		return models.Frame{Name: name}, nil
	}
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to read CSV header of %s: %w", name, err)
	}
	f := models.Frame{Name: name, Columns: make([]string, len(headers))}
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		f.Columns[i] = strings.ReplaceAll(h, `"`, "")
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Frame{}, fmt.Errorf("CSV read error in %s line %d: %w", name, line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(f.Columns) > 1 {
			continue
		}
		rec := make(models.Record, len(f.Columns))
		for i, c := range f.Columns {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				rec[c] = nil
				continue
			}
			rec[c] = record[i]
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

// LoadFrame reads a source from an http(s) URL or a local file.
func LoadFrame(ctx context.Context, c HTTPClient, b utils.Backoff, location, name string) (models.Frame, error) {
	if config.IsURL(location) {
		body, err := GetWithRetry(ctx, c, location, b)
		if err != nil {
			return models.Frame{}, fmt.Errorf("failed to GET %s: %w", location, err)
		}
		return ReadCSV(bytes.NewReader(body), name)
	}
	file, err := os.Open(location)
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file, name)
}
