package tally

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is a single value and the number of times it occurred.
type Entry struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Winner is the selected value of a group.
type Winner = Entry

// FrequencyTable counts the distinct values of one group. Entries are kept
// in the order each value was first seen.
type FrequencyTable struct {
	counts *orderedmap.OrderedMap[string, int]
	total  int
}

// Count builds the FrequencyTable for values.
func Count(values []string) *FrequencyTable {
	ft := &FrequencyTable{
		counts: orderedmap.New[string, int](),
	}

	for _, v := range values {
		n, _ := ft.counts.Get(v)
		ft.counts.Set(v, n+1)
		ft.total++
	}

	return ft
}

// Get returns the count for value, 0 if it never occurred.
func (ft *FrequencyTable) Get(value string) int {
	n, _ := ft.counts.Get(value)
	return n
}

// Len returns the number of distinct values.
func (ft *FrequencyTable) Len() int {
	return ft.counts.Len()
}

// Total returns the sum of all counts.
func (ft *FrequencyTable) Total() int {
	return ft.total
}

// Entries returns the table contents in first-seen order.
func (ft *FrequencyTable) Entries() []Entry {
	entries := make([]Entry, 0, ft.counts.Len())
	for pair := ft.counts.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{Value: pair.Key, Count: pair.Value})
	}

	return entries
}

// Mode returns the entry with the highest count.
//
// Entries are stable-sorted ascending by count and the last one is taken, so
// among values tied for the highest count the one first seen latest wins:
// x,y,x,y selects y.
//
// Mode panics on an empty table; Group never produces one.
func (ft *FrequencyTable) Mode() Winner {
	entries := ft.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count < entries[j].Count
	})

	return entries[len(entries)-1]
}
