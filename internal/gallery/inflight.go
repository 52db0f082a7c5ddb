package gallery

import "sync"

// inflightSet tracks record ids with a download in progress.
type inflightSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{ids: make(map[string]struct{})}
}

// tryAcquire claims id. It returns false if a download is already running.
func (s *inflightSet) tryAcquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *inflightSet) release(id string) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}
