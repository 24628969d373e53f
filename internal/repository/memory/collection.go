// Package memory holds in-process implementations of the record stores.
// Filtering goes through filter.Predicate.Match so they answer queries the
// same way the MongoDB repositories do.
package memory

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type entry[T any] struct {
	value *T
	doc   map[string]interface{}
	seq   int
}

// collection stores deep copies so callers can never mutate stored state.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[bson.ObjectID]*entry[T]
	seq   int
	err   error
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[bson.ObjectID]*entry[T])}
}

func encode[T any](v *T) (*T, map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	return &out, doc, nil
}

func copyOf[T any](v *T) *T {
	out, _, err := encode(v)
	if err != nil {
		panic(fmt.Sprintf("memory: copy record: %v", err))
	}
	return out
}

// setError makes every later operation fail with err until it is reset
// with nil.
func (c *collection[T]) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *collection[T]) insert(id bson.ObjectID, v *T) error {
	stored, doc, err := encode(v)
	if err != nil {
		return err
	}
	if _, exists := c.items[id]; exists {
		return fmt.Errorf("duplicate _id %s", id.Hex())
	}
	c.seq++
	c.items[id] = &entry[T]{value: stored, doc: doc, seq: c.seq}
	return nil
}

func (c *collection[T]) replace(id bson.ObjectID, v *T) error {
	stored, doc, err := encode(v)
	if err != nil {
		return err
	}
	e := c.items[id]
	e.value, e.doc = stored, doc
	return nil
}

// query returns copies of matching records ordered by less, with insertion
// order descending as tie breaker.
func (c *collection[T]) query(pred filter.Predicate, less func(a, b *T) bool) []*T {
	matched := make([]*entry[T], 0, len(c.items))
	for _, e := range c.items {
		if pred.Match(e.doc) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if less(a.value, b.value) {
			return true
		}
		if less(b.value, a.value) {
			return false
		}
		return a.seq > b.seq
	})

	out := make([]*T, 0, len(matched))
	for _, e := range matched {
		out = append(out, copyOf(e.value))
	}
	return out
}
