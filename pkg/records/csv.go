package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

const utf8BOM = "\ufeff"

// readCSV iterates through a comma-separated file with a header row, calling fn
// with each row keyed by header name. Blank lines are skipped by the reader.
// required lists header names that must be present.
func readCSV(path string, required []string, fn func(line int, record map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return parseCSV(f, path, required, fn)
}

func parseCSV(r io.Reader, name string, required []string, fn func(line int, record map[string]string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return fmt.Errorf("%w: %s is empty", errors.ErrInvalidInput, name)
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", name, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return fmt.Errorf("%w: %s has no %q column", errors.ErrInvalidInput, name, col)
		}
	}

	for {
		cols, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		line, _ := reader.FieldPos(0)

		rec := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(cols) {
				rec[h] = strings.TrimSpace(cols[j])
			}
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// firstOf returns the first non-empty value among the given columns.
func firstOf(rec map[string]string, cols ...string) string {
	for _, c := range cols {
		if v := rec[c]; v != "" {
			return v
		}
	}
	return ""
}
