package tally

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacquerai/abgroup/internal/loader"
)

func rows(pairs ...string) []loader.Row {
	out := make([]loader.Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, loader.Row{ColumnA: pairs[i], ColumnB: pairs[i+1]})
	}
	return out
}

func TestGroup(t *testing.T) {
	g := Group(rows(
		"Acme", "a.com",
		"Beta", "c.com",
		"Acme", "b.com",
		"Acme", "a.com",
	))

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"Acme", "Beta"}, g.Keys())

	acme, ok := g.Get("Acme")
	require.True(t, ok)
	assert.Equal(t, []string{"a.com", "b.com", "a.com"}, acme)

	beta, ok := g.Get("Beta")
	require.True(t, ok)
	assert.Equal(t, []string{"c.com"}, beta)

	_, ok = g.Get("Gamma")
	assert.False(t, ok)
}

func TestGroup_Empty(t *testing.T) {
	g := Group(nil)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Keys())

	assert.Equal(t, 0, Select(g).Len())
}

func TestCount(t *testing.T) {
	ft := Count([]string{"b", "a", "b", "c", "b", "a"})

	assert.Equal(t, 3, ft.Len())
	assert.Equal(t, 6, ft.Total())
	assert.Equal(t, []Entry{
		{Value: "b", Count: 3},
		{Value: "a", Count: 2},
		{Value: "c", Count: 1},
	}, ft.Entries())
	assert.Equal(t, 0, ft.Get("missing"))
}

func TestMode(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected Winner
	}{
		{
			name:     "single value",
			values:   []string{"a.com"},
			expected: Winner{Value: "a.com", Count: 1},
		},
		{
			name:     "clear winner",
			values:   []string{"a.com", "b.com", "a.com"},
			expected: Winner{Value: "a.com", Count: 2},
		},
		{
			name:     "winner seen last",
			values:   []string{"a", "b", "b", "c", "b"},
			expected: Winner{Value: "b", Count: 3},
		},
		{
			name:     "two way tie picks latest first occurrence",
			values:   []string{"x", "y", "x", "y"},
			expected: Winner{Value: "y", Count: 2},
		},
		{
			name:     "tie order depends on first occurrence not last",
			values:   []string{"y", "x", "x", "y"},
			expected: Winner{Value: "x", Count: 2},
		},
		{
			name:     "all distinct picks last",
			values:   []string{"a", "b", "c"},
			expected: Winner{Value: "c", Count: 1},
		},
		{
			name:     "tie below max is ignored",
			values:   []string{"a", "b", "c", "c", "c", "a", "b"},
			expected: Winner{Value: "c", Count: 3},
		},
		{
			name:     "three way tie",
			values:   []string{"p", "q", "r", "r", "q", "p"},
			expected: Winner{Value: "r", Count: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Count(tt.values).Mode())
		})
	}
}

func TestMode_DoesNotReorderEntries(t *testing.T) {
	ft := Count([]string{"a", "b", "b"})
	_ = ft.Mode()

	assert.Equal(t, []Entry{{Value: "a", Count: 1}, {Value: "b", Count: 2}}, ft.Entries())
}

func TestSelect(t *testing.T) {
	tl := Select(Group(rows(
		"Acme", "a.com",
		"Acme", "b.com",
		"Acme", "a.com",
		"Beta", "c.com",
	)))

	var keys []string
	var winners []Winner
	tl.Each(func(key string, w Winner) {
		keys = append(keys, key)
		winners = append(winners, w)
	})

	assert.Equal(t, []string{"Acme", "Beta"}, keys)
	assert.Equal(t, []Winner{
		{Value: "a.com", Count: 2},
		{Value: "c.com", Count: 1},
	}, winners)

	w, ok := tl.Get("Beta")
	require.True(t, ok)
	assert.Equal(t, Winner{Value: "c.com", Count: 1}, w)
}

// randomRows builds inputs with few keys and values so groups and ties are common.
func randomRows(r *rand.Rand) []loader.Row {
	n := r.Intn(60)
	out := make([]loader.Row, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, loader.Row{
			ColumnA: fmt.Sprintf("k%d", r.Intn(6)),
			ColumnB: fmt.Sprintf("v%d", r.Intn(4)),
		})
	}
	return out
}

func TestProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		input := randomRows(r)
		groups := Group(input)

		// every key is grouped, in first-seen order, with its values in input order
		var firstSeen []string
		expected := map[string][]string{}
		for _, row := range input {
			if _, ok := expected[row.ColumnA]; !ok {
				firstSeen = append(firstSeen, row.ColumnA)
			}
			expected[row.ColumnA] = append(expected[row.ColumnA], row.ColumnB)
		}
		if len(firstSeen) == 0 {
			assert.Empty(t, groups.Keys())
		} else {
			assert.Equal(t, firstSeen, groups.Keys())
		}
		groups.Each(func(key string, values []string) {
			assert.Equal(t, expected[key], values)
		})

		tl := Select(groups)
		assert.Equal(t, len(firstSeen), tl.Len())

		groups.Each(func(key string, values []string) {
			ft := Count(values)

			sum := 0
			for _, e := range ft.Entries() {
				assert.GreaterOrEqual(t, e.Count, 1)
				sum += e.Count
			}
			assert.Equal(t, len(values), sum)
			assert.Equal(t, len(values), ft.Total())

			w, ok := tl.Get(key)
			require.True(t, ok)
			for _, e := range ft.Entries() {
				assert.GreaterOrEqual(t, w.Count, e.Count)
			}
			assert.Equal(t, ft.Get(w.Value), w.Count)
		})
	}
}
