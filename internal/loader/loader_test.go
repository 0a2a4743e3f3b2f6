package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacquerai/abgroup/internal/testhelper"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeInput(t, "company,domain\nAcme,a.com\nAcme,b.com\nAcme,a.com\nBeta,c.com\n")

	rows, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{ColumnA: "Acme", ColumnB: "a.com"},
		{ColumnA: "Acme", ColumnB: "b.com"},
		{ColumnA: "Acme", ColumnB: "a.com"},
		{ColumnA: "Beta", ColumnB: "c.com"},
	}, rows)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")

	rows, err := Load(path)
	assert.Nil(t, rows)

	var missing *MissingInputFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, path, missing.Path)
	assert.Contains(t, missing.Suggestion(), `"input.csv"`)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{
			name:    "single field line",
			content: "a,b\nAcme,a.com\nBeta\n",
			line:    3,
		},
		{
			name:    "bare quote",
			content: "a,b\nAc\"me,a.com\n",
			line:    2,
		},
		{
			name:    "blank line between records",
			content: "a,b\nAcme,a.com\n\nBeta,c.com\n",
			line:    3,
		},
		{
			name:    "blank line with carriage return",
			content: "a,b\r\nAcme,a.com\r\n\r\nBeta,c.com\r\n",
			line:    3,
		},
		{
			name:    "blank line after a multi-line field",
			content: "a,b\n\"Acme\nInc\",a.com\n\nBeta,c.com\n",
			line:    4,
		},
		{
			name:    "whitespace only line",
			content: "a,b\nAcme,a.com\n \nBeta,c.com\n",
			line:    3,
		},
		{
			name:    "blank line at end of file",
			content: "a,b\nAcme,a.com\n\n",
			line:    3,
		},
		{
			name:    "unterminated quote",
			content: "a,b\n\"Acme,a.com\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, tt.content)

			rows, err := Load(path)
			assert.Nil(t, rows)

			var malformed *MalformedInputFileError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, path, malformed.Path)
			assert.Positive(t, malformed.Line)
			if tt.line > 0 {
				assert.Equal(t, tt.line, malformed.Line)
			}
			assert.NotNil(t, errors.Unwrap(err))
			assert.Contains(t, malformed.Suggestion(), "not structured properly")
		})
	}
}

func TestLoad_UnreadablePath(t *testing.T) {
	file := writeInput(t, "a,b\n")

	// a regular file used as a directory cannot be stat'ed
	_, err := Load(filepath.Join(file, "input.csv"))

	var missing *MissingInputFileError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, missing.Suggestion(), `"input.csv"`)
}

func TestLoad_LogsRowCount(t *testing.T) {
	logs := testhelper.CaptureLogs(t, zerolog.DebugLevel)
	path := writeInput(t, "a,b\nAcme,a.com\nBeta,c.com\n")

	_, err := Load(path)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"message":"Input file loaded"`)
	assert.Contains(t, logs.String(), `"rows":2`)
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir())

	var malformed *MalformedInputFileError
	assert.True(t, errors.As(err, &malformed))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Row
	}{
		{
			name:     "empty file",
			input:    "",
			expected: []Row{},
		},
		{
			name:     "header only",
			input:    "column_a,column_b\n",
			expected: []Row{},
		},
		{
			name:  "header names are ignored",
			input: "domain,company\nx,y\n",
			expected: []Row{
				{ColumnA: "x", ColumnB: "y"},
			},
		},
		{
			name:  "extra fields are dropped",
			input: "a,b,c\nAcme,a.com,ignored\n",
			expected: []Row{
				{ColumnA: "Acme", ColumnB: "a.com"},
			},
		},
		{
			name:  "quoted fields",
			input: "a,b\n\"Acme, Inc.\",\"a.com\"\n",
			expected: []Row{
				{ColumnA: "Acme, Inc.", ColumnB: "a.com"},
			},
		},
		{
			name:  "no trailing newline",
			input: "a,b\nAcme,a.com",
			expected: []Row{
				{ColumnA: "Acme", ColumnB: "a.com"},
			},
		},
		{
			name:  "multi-line quoted field",
			input: "a,b\n\"Acme\nInc\",a.com\nBeta,c.com\n",
			expected: []Row{
				{ColumnA: "Acme\nInc", ColumnB: "a.com"},
				{ColumnA: "Beta", ColumnB: "c.com"},
			},
		},
		{
			name:  "carriage return line endings",
			input: "a,b\r\nAcme,a.com\r\n",
			expected: []Row{
				{ColumnA: "Acme", ColumnB: "a.com"},
			},
		},
		{
			name:  "empty values are kept",
			input: "a,b\nAcme,\n",
			expected: []Row{
				{ColumnA: "Acme", ColumnB: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}
