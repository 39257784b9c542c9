package store

import "sync"

// MemoryStore is a map-backed Store for tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) key(kind Kind, scope Scope) string {
	return string(kind) + "/" + scope.ChannelID
}

func (s *MemoryStore) Load(kind Kind, scope Scope) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[s.key(kind, scope)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemoryStore) Save(kind Kind, scope Scope, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[s.key(kind, scope)] = stored
	return nil
}
