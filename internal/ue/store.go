package ue

import "fmt"

// Store holds the records of a contiguous IMSI range.
//
// Records are created up front and iterated in ascending IMSI order.
// Store is not safe for concurrent use.
type Store struct {
	first   uint64
	records []Record
}

// NewStore creates records for count devices starting at first.
func NewStore(first uint64, count int) (*Store, error) {
	if count < 1 {
		return nil, fmt.Errorf("device count must be at least 1 (got %d)", count)
	}
	if first+uint64(count-1) < first {
		return nil, fmt.Errorf("IMSI range %d+%d overflows", first, count)
	}

	s := &Store{
		first:   first,
		records: make([]Record, count),
	}
	for i := range s.records {
		s.records[i].IMSI = first + uint64(i)
	}
	return s, nil
}

// First returns the lowest IMSI in the store.
func (s *Store) First() uint64 {
	return s.first
}

// Len returns the number of configured devices.
func (s *Store) Len() int {
	return len(s.records)
}

// Get returns the record for imsi, or nil when it is outside the range.
func (s *Store) Get(imsi uint64) *Record {
	if imsi < s.first || imsi-s.first >= uint64(len(s.records)) {
		return nil
	}
	return &s.records[imsi-s.first]
}

// Each calls fn for every record in ascending IMSI order.
func (s *Store) Each(fn func(*Record)) {
	for i := range s.records {
		fn(&s.records[i])
	}
}

// Records returns the records in ascending IMSI order.
// The slice aliases the store.
func (s *Store) Records() []Record {
	return s.records
}
