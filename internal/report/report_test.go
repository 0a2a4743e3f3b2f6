package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacquerai/abgroup/internal/loader"
	"github.com/lacquerai/abgroup/internal/tally"
)

func TestRecords(t *testing.T) {
	tl := tally.Select(tally.Group([]loader.Row{
		{ColumnA: "Acme", ColumnB: "a.com"},
		{ColumnA: "Acme", ColumnB: "b.com"},
		{ColumnA: "Acme", ColumnB: "a.com"},
		{ColumnA: "Beta", ColumnB: "c.com"},
	}))

	assert.Equal(t, []OutputRecord{
		{ColumnA: "Acme", ColumnB: "a.com", Count: 2},
		{ColumnA: "Beta", ColumnB: "c.com", Count: 1},
	}, Records(tl))
}

func TestRecords_Empty(t *testing.T) {
	records := Records(tally.Select(tally.Group(nil)))
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		records  []OutputRecord
		expected string
	}{
		{
			name:     "header only",
			records:  nil,
			expected: "column_a,column_b,count\n",
		},
		{
			name: "records in order",
			records: []OutputRecord{
				{ColumnA: "Acme", ColumnB: "a.com", Count: 2},
				{ColumnA: "Beta", ColumnB: "c.com", Count: 1},
			},
			expected: "column_a,column_b,count\nAcme,a.com,2\nBeta,c.com,1\n",
		},
		{
			name: "fields needing quotes",
			records: []OutputRecord{
				{ColumnA: "Acme, Inc.", ColumnB: `say "hi"`, Count: 3},
			},
			expected: "column_a,column_b,count\n\"Acme, Inc.\",\"say \"\"hi\"\"\",3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.records))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the new file\n"), 0644))

	err := WriteFile(path, []OutputRecord{{ColumnA: "Beta", ColumnB: "c.com", Count: 1}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "column_a,column_b,count\nBeta,c.com,1\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should not be left behind")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "output.csv")

	err := WriteFile(path, nil)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
