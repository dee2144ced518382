package api

import (
	"sync"

	"github.com/samcharles93/cosine/internal/kernel"
)

const defaultStoreLimit = 1024

// LaunchStore keeps the reports of recent launches for lookup by id. The
// oldest report is evicted once the limit is reached.
type LaunchStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	reports map[string]*kernel.Report
}

func NewLaunchStore(limit int) *LaunchStore {
	if limit <= 0 {
		limit = defaultStoreLimit
	}
	return &LaunchStore{
		limit:   limit,
		reports: make(map[string]*kernel.Report),
	}
}

func (s *LaunchStore) Put(rep *kernel.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[rep.ID]; !ok {
		s.order = append(s.order, rep.ID)
	}
	s.reports[rep.ID] = rep
	for len(s.order) > s.limit {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *LaunchStore) Get(id string) (*kernel.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reports[id]
	return rep, ok
}

func (s *LaunchStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}
