package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"leadscout/internal/model"
)

// CSVSource reads listings from a local file, useful for re-running the
// pipeline over a saved search without burning API quota.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "CSV"
}

// Search ignores the category; the file is taken as-is.
func (s *CSVSource) Search(ctx context.Context, category string) ([]model.Listing, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	// Read header to find column indexes
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(name)] = i
	}

	var listings []model.Listing
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		get := func(key string) string {
			if idx, ok := cols[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}

		if get("name") == "" {
			continue
		}

		listings = append(listings, model.Listing{
			Name:    get("name"),
			Website: get("website"),
			Phone:   get("phone"),
		})
	}

	return listings, nil
}
