// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders paper results to the console or to CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Headers are the fixed output columns, in order.
var Headers = []string{
	"PubmedID",
	"Title",
	"Publication Date",
	"Non-academic Author(s)",
	"Company Affiliation(s)",
	"Corresponding Author Email",
	"LLM Summary",
}

// WriteCSV writes the header row followed by one row per paper. The header
// is written even when papers is empty.
func WriteCSV(w io.Writer, papers []types.PaperResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Headers); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range papers {
		if err := writer.Write(p.Row()); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", p.PubmedID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes papers to path, creating or truncating the file.
func SaveCSV(path string, papers []types.PaperResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return WriteCSV(f, papers)
}
