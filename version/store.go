// Package version persists numbered configuration snapshots. The in-memory
// Store is the canonical history used by the controller; KVStore mirrors the
// same contract onto a JetStream key-value bucket so history survives process
// restarts.
package version

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

// Store is a thread-safe, sequentially numbered version history. Numbers start
// at 1 and are never reused; insertion and counter advance happen as one
// atomic unit, so concurrent saves never collide.
type Store struct {
	mu       sync.RWMutex
	versions map[int]*types.ConfigurationVersion
	counter  int // next number to assign
}

// NewStore creates an empty store with numbering starting at 1.
func NewStore() *Store {
	return &Store{
		versions: make(map[int]*types.ConfigurationVersion),
		counter:  1,
	}
}

// Save stores a version. A non-positive Number is assigned from the running
// counter; a caller-supplied Number is accepted and the counter advances to
// max(counter, number+1).
func (s *Store) Save(v *types.ConfigurationVersion) error {
	if v == nil {
		return errors.WrapInvalid(errors.ErrNilVersion, "Store", "Save", "check version")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.Number <= 0 {
		v.Number = s.counter
		s.counter++
	} else if v.Number+1 > s.counter {
		s.counter = v.Number + 1
	}
	s.versions[v.Number] = v
	return nil
}

// GetVersion returns the version with the given number.
func (s *Store) GetVersion(number int) (*types.ConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[number]
	if !ok {
		return nil, errors.WrapNotFound(errors.ErrVersionNotFound, "Store", "GetVersion",
			fmt.Sprintf("lookup version %d", number))
	}
	return v, nil
}

// GetLatest returns the highest-numbered version present.
func (s *Store) GetLatest() (*types.ConfigurationVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *types.ConfigurationVersion
	for _, v := range s.versions {
		if latest == nil || v.Number > latest.Number {
			latest = v
		}
	}
	if latest == nil {
		return nil, errors.WrapNotFound(errors.ErrVersionNotFound, "Store", "GetLatest", "lookup latest version")
	}
	return latest, nil
}

// GetHistory returns up to count versions, newest first. History truncation is
// a view; nothing is deleted.
func (s *Store) GetHistory(count int) []*types.ConfigurationVersion {
	all := s.GetAll()
	// reverse to newest-first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if count >= 0 && count < len(all) {
		all = all[:count]
	}
	return all
}

// GetAll returns every version, oldest first.
func (s *Store) GetAll() []*types.ConfigurationVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*types.ConfigurationVersion, 0, len(s.versions))
	for _, v := range s.versions {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })
	return all
}

// Count returns the number of stored versions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions)
}

// Clear empties the store and resets numbering to 1.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions = make(map[int]*types.ConfigurationVersion)
	s.counter = 1
}
