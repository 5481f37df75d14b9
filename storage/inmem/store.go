// Package inmem keeps the latest dashboard state of every student in memory.
package inmem

import (
	"sync"
	"time"

	"github.com/Frictionalfor/codeFORGE-sub002/core/dashboard"
)

var nowFunc = time.Now // mockable

type entry struct {
	state    dashboard.State
	storedAt time.Time
}

type Store struct {
	mutex  sync.RWMutex
	table  map[string]entry
	maxAge time.Duration
}

var _ dashboard.Store = (*Store)(nil)

// NewStore keeps entries for maxAge; zero keeps them until replaced.
func NewStore(maxAge time.Duration) *Store {
	return &Store{table: make(map[string]entry), maxAge: maxAge}
}

func (s *Store) Get(key string) (dashboard.State, bool) {
	s.mutex.RLock()
	e, ok := s.table[key]
	s.mutex.RUnlock()

	if !ok {
		return dashboard.State{}, false
	}
	if s.maxAge > 0 && nowFunc().Sub(e.storedAt) > s.maxAge {
		s.expire(key, e.storedAt)
		return dashboard.State{}, false
	}
	return e.state, true
}

// expire deletes key unless it was stored again after storedAt.
func (s *Store) expire(key string, storedAt time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if e, ok := s.table[key]; ok && e.storedAt.Equal(storedAt) {
		delete(s.table, key)
	}
}

func (s *Store) Put(key string, st dashboard.State) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = entry{state: st, storedAt: nowFunc()}
}

func (s *Store) Delete(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
