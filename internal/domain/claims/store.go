package claims

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNotFound = errors.New("claim not found")

// Store is an immutable, ordered set of claims. The order records were
// supplied in is the order the query pipeline treats as "original".
type Store struct {
	records []Claim
	byID    map[string]int
}

// NewStore validates and copies records into a new Store.
func NewStore(records []Claim) (*Store, error) {
	s := &Store{
		records: slices.Clone(records),
		byID:    make(map[string]int, len(records)),
	}
	for i := range s.records {
		c := &s.records[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate claim id %s", i, c.ID)
		}
		s.byID[c.ID] = i
	}
	return s, nil
}

func (s *Store) Len() int {
	return len(s.records)
}

// All returns the records in store order. The returned slice is a copy.
func (s *Store) All() []Claim {
	return slices.Clone(s.records)
}

func (s *Store) Get(id string) (Claim, error) {
	i, ok := s.byID[id]
	if !ok {
		return Claim{}, ErrNotFound
	}
	return s.records[i], nil
}
