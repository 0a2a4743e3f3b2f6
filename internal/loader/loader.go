// Package loader reads the two-column input file into rows.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// DefaultPath is the conventional input location, relative to the working directory.
const DefaultPath = "input.csv"

// Row is a single non-header record. Only the first two fields of a record
// are kept.
type Row struct {
	ColumnA string `json:"column_a" yaml:"column_a"`
	ColumnB string `json:"column_b" yaml:"column_b"`
}

// Load reads the file at path, skips its header line and returns every
// remaining record as a Row. Any problem with the file contents fails the
// whole load; no partial result is returned.
func Load(path string) ([]Row, error) {
	// A path that cannot be stat'ed counts as absent, whatever the reason.
	if _, err := os.Stat(path); err != nil {
		return nil, &MissingInputFileError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedInputFileError{Path: path, Err: err}
	}

	rows, err := parse(data)
	if err != nil {
		malformed := &MalformedInputFileError{Path: path, Err: err}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			malformed.Line = parseErr.Line
		}

		return nil, malformed
	}

	log.Debug().
		Str("path", path).
		Int("rows", len(rows)).
		Msg("Input file loaded")

	return rows, nil
}

// Parse reads CSV from r, discarding the first record as a header. Every
// line after the header must hold a record of at least two fields; short
// records and blank lines are rejected with a *csv.ParseError.
func Parse(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return parse(data)
}

func parse(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	// header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []Row{}, nil
		}

		return nil, err
	}

	// encoding/csv drops empty lines, so track where the next record
	// should start and report any gap as a blank line.
	offset := reader.InputOffset()
	nextLine := 1 + bytes.Count(data[:offset], []byte("\n"))

	rows := []Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			if len(data[offset:]) > 0 {
				return nil, blankLineError(nextLine)
			}
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		if line > nextLine {
			return nil, blankLineError(nextLine)
		}

		if len(record) < 2 {
			return nil, &csv.ParseError{
				StartLine: line,
				Line:      line,
				Column:    1,
				Err:       fmt.Errorf("expected at least 2 fields, got %d", len(record)),
			}
		}

		rows = append(rows, Row{
			ColumnA: record[0],
			ColumnB: record[1],
		})

		end := reader.InputOffset()
		nextLine += bytes.Count(data[offset:end], []byte("\n"))
		offset = end
	}

	return rows, nil
}

func blankLineError(line int) error {
	return &csv.ParseError{
		StartLine: line,
		Line:      line,
		Column:    1,
		Err:       errors.New("expected at least 2 fields, got an empty line"),
	}
}
