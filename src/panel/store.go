package panel

import "sync"

// VisibilityStore persists which series a user has hidden. Keys are the
// widget (panel) id and the series name.
type VisibilityStore interface {
	Hidden(widgetID, series string) bool
	SetHidden(widgetID, series string, hidden bool)
}

// MemoryStore is an in-process VisibilityStore.
type MemoryStore struct {
	mu     sync.RWMutex
	hidden map[string]map[string]bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hidden: map[string]map[string]bool{}}
}

func (s *MemoryStore) Hidden(widgetID, series string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hidden[widgetID][series]
}

func (s *MemoryStore) SetHidden(widgetID, series string, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.hidden[widgetID]
	if !ok {
		w = map[string]bool{}
		s.hidden[widgetID] = w
	}
	if hidden {
		w[series] = true
	} else {
		delete(w, series)
	}
}
