package inmemdb

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Table operations on unknown rows.
var ErrNotFound = errors.New("row not found")

// NewID returns a random row ID.
func NewID() string {
	return uuid.New().String()
}

// Table is a concurrency safe collection of rows keyed by ID, kept in insertion order.
type Table[T any] struct {
	mutex sync.RWMutex
	rows  map[string]T
	order []string
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: make(map[string]T)}
}

func (t *Table[T]) Insert(id string, row T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

// Update applies fn to a copy of the row and saves it unless fn fails.
func (t *Table[T]) Update(id string, fn func(row *T) error) (T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	if err := fn(&row); err != nil {
		var zero T
		return zero, err
	}
	t.rows[id] = row
	return row, nil
}

// Delete removes rows; ErrNotFound is returned, and nothing is removed, when one is missing.
func (t *Table[T]) Delete(ids ...string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, id := range ids {
		if _, ok := t.rows[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range ids {
		delete(t.rows, id)
	}
	order := t.order[:0]
	for _, id := range t.order {
		if _, ok := t.rows[id]; ok {
			order = append(order, id)
		}
	}
	t.order = order
	return nil
}

// DeleteWhere removes the rows matching match and returns how many were removed.
func (t *Table[T]) DeleteWhere(match func(T) bool) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var n int
	order := t.order[:0]
	for _, id := range t.order {
		if match(t.rows[id]) {
			delete(t.rows, id)
			n++
			continue
		}
		order = append(order, id)
	}
	t.order = order
	return n
}

// Filter returns the rows matching match (every row when nil), in insertion order.
func (t *Table[T]) Filter(match func(T) bool) []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

// Find returns the first row matching match.
func (t *Table[T]) Find(match func(T) bool) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (t *Table[T]) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.rows)
}
