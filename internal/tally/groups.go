// Package tally groups rows by their first column and picks the most
// frequent second-column value of every group.
//
// The work happens in three typed stages:
//
//	[]loader.Row -> Groups -> FrequencyTable (per group) -> Winner (per group)
//
// Every mapping keeps insertion order, so output follows the order in which
// keys were first seen in the input.
package tally

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/lacquerai/abgroup/internal/loader"
)

// Groups maps a column_a key to the column_b values of every row carrying
// that key, in input order.
type Groups struct {
	values *orderedmap.OrderedMap[string, []string]
}

// NewGroups creates an empty Groups.
func NewGroups() *Groups {
	return &Groups{
		values: orderedmap.New[string, []string](),
	}
}

// Group partitions rows by ColumnA. Keys appear in order of first
// appearance and each sequence keeps the relative order of its rows.
func Group(rows []loader.Row) *Groups {
	g := NewGroups()
	for _, row := range rows {
		g.Add(row.ColumnA, row.ColumnB)
	}

	return g
}

// Add appends value to the sequence for key, creating the sequence on first sight.
func (g *Groups) Add(key, value string) {
	existing, _ := g.values.Get(key)
	g.values.Set(key, append(existing, value))
}

// Get returns the sequence for key.
func (g *Groups) Get(key string) ([]string, bool) {
	return g.values.Get(key)
}

// Len returns the number of distinct keys.
func (g *Groups) Len() int {
	return g.values.Len()
}

// Keys returns every key in first-seen order.
func (g *Groups) Keys() []string {
	keys := make([]string, 0, g.values.Len())
	for pair := g.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// Each calls fn for every group in first-seen order.
func (g *Groups) Each(fn func(key string, values []string)) {
	for pair := g.values.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
