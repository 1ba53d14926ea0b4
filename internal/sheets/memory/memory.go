// Package memory is an in-process RowStore used for local development and
// tests. It can be seeded from JSON files named after each collection.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ports "mapfin/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows map[ports.Collection][]ports.Row
}

var _ ports.RowStore = (*Store)(nil)

// New returns a store holding copies of seed.
func New(seed map[ports.Collection][]ports.Row) *Store {
	s := &Store{rows: make(map[ports.Collection][]ports.Row)}
	for c, rows := range seed {
		for _, r := range rows {
			s.rows[c] = append(s.rows[c], r.Clone())
		}
	}
	return s
}

// NewFromDir seeds a store from <dir>/<Collection>.json, each holding a
// JSON array of objects. Missing files leave the collection empty.
func NewFromDir(dir string) (*Store, error) {
	seed := make(map[ports.Collection][]ports.Row)
	for _, c := range ports.Collections {
		rows, err := readSeed(filepath.Join(dir, string(c)+".json"))
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", c, err)
		}
		seed[c] = rows
	}
	return New(seed), nil
}

func readSeed(path string) ([]ports.Row, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var objs []map[string]any
	if err := json.Unmarshal(b, &objs); err != nil {
		return nil, err
	}
	rows := make([]ports.Row, 0, len(objs))
	for _, o := range objs {
		r, err := ports.RowFromJSON(o)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func known(c ports.Collection) error {
	if _, err := ports.ParseCollection(string(c)); err != nil {
		return err
	}
	return nil
}

func (s *Store) FetchAll(_ context.Context, c ports.Collection) ([]ports.Row, error) {
	if err := known(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Row, len(s.rows[c]))
	for i, r := range s.rows[c] {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, c ports.Collection, row ports.Row) (ports.Row, error) {
	if err := known(c); err != nil {
		return nil, err
	}
	row = ports.PrepareInsert(c, row)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c] = append(s.rows[c], row)
	return row.Clone(), nil
}

func (s *Store) indexOf(c ports.Collection, id string) int {
	for i, r := range s.rows[c] {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func (s *Store) Update(_ context.Context, c ports.Collection, id string, row ports.Row) (ports.Row, error) {
	if err := known(c); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(c, id)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	row = ports.PrepareUpdate(id, row)
	s.rows[c][i] = row
	return row.Clone(), nil
}

func (s *Store) Delete(_ context.Context, c ports.Collection, id string) error {
	if err := known(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(c, id)
	if i < 0 {
		return ports.ErrNotFound
	}
	s.rows[c] = append(s.rows[c][:i], s.rows[c][i+1:]...)
	return nil
}
