package loader

import (
	"fmt"
	"path/filepath"
)

// MissingInputFileError is returned when nothing exists at the input path,
// or when the path cannot be looked up at all.
type MissingInputFileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Error implements the error interface
func (e *MissingInputFileError) Error() string {
	return fmt.Sprintf("input file %s was not found", e.Path)
}

// Unwrap returns the lookup error, if any.
func (e *MissingInputFileError) Unwrap() error {
	return e.Err
}

// Suggestion returns the user-facing hint for the missing file.
func (e *MissingInputFileError) Suggestion() string {
	return fmt.Sprintf("Input file was not found. Did you add an %q file to this folder?", filepath.Base(e.Path))
}

// MalformedInputFileError is returned when the input exists but cannot be
// read as a header line followed by records of at least two fields.
type MalformedInputFileError struct {
	Path string `json:"path"`
	// Line is the 1-based line the problem was found on, 0 if unknown.
	Line int   `json:"line,omitempty"`
	Err  error `json:"-"`
}

// Error implements the error interface
func (e *MalformedInputFileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input file %s at line %d: %v", e.Path, e.Line, e.Err)
	}

	return fmt.Sprintf("malformed input file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying read or parse error.
func (e *MalformedInputFileError) Unwrap() error {
	return e.Err
}

// Suggestion returns the user-facing hint for a file that failed to parse.
func (e *MalformedInputFileError) Suggestion() string {
	return "Could not read from input file. Maybe the file is not structured properly?"
}
