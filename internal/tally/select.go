package tally

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tally maps every group key to its winning value.
type Tally struct {
	winners *orderedmap.OrderedMap[string, Winner]
}

// Select counts the values of every group and keeps each group's mode.
// Group order is preserved.
func Select(groups *Groups) *Tally {
	t := &Tally{
		winners: orderedmap.New[string, Winner](),
	}

	groups.Each(func(key string, values []string) {
		t.winners.Set(key, Count(values).Mode())
	})

	return t
}

// Get returns the winner for key.
func (t *Tally) Get(key string) (Winner, bool) {
	return t.winners.Get(key)
}

// Len returns the number of groups.
func (t *Tally) Len() int {
	return t.winners.Len()
}

// Each calls fn for every group in first-seen order.
func (t *Tally) Each(fn func(key string, winner Winner)) {
	for pair := t.winners.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
