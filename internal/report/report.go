// Package report turns a tally into the output CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/lacquerai/abgroup/internal/tally"
)

// DefaultPath is the conventional output location, relative to the working directory.
const DefaultPath = "output.csv"

// Header is the fixed first line of every output file.
var Header = []string{"column_a", "column_b", "count"}

// OutputRecord is one line of the output file.
type OutputRecord struct {
	ColumnA string `json:"column_a" yaml:"column_a"`
	ColumnB string `json:"column_b" yaml:"column_b"`
	Count   int    `json:"count" yaml:"count"`
}

// Records flattens t into one record per group, in group order.
func Records(t *tally.Tally) []OutputRecord {
	records := make([]OutputRecord, 0, t.Len())
	t.Each(func(key string, w tally.Winner) {
		records = append(records, OutputRecord{
			ColumnA: key,
			ColumnB: w.Value,
			Count:   w.Count,
		})
	})

	return records
}

// Write serializes records as CSV, header first.
func Write(w io.Writer, records []OutputRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		if err := writer.Write([]string{r.ColumnA, r.ColumnB, strconv.Itoa(r.Count)}); err != nil {
			return fmt.Errorf("failed to write record for %q: %w", r.ColumnA, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes records to path, replacing any existing file. The data
// is written to a temporary file in the same directory and renamed into
// place, so a failed write never leaves a truncated output behind.
func WriteFile(path string, records []OutputRecord) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file in %s: %w", dir, err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("records", len(records)).
		Msg("Output file written")

	return nil
}
