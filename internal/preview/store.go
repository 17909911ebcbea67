package preview

import "sync"

// ObjectStore holds the bytes behind live resource references.
// It plays the role of the platform's object-URL registry.
type ObjectStore interface {
	// Register makes data reachable through reference
	Register(reference string, data []byte, mimeType string)

	// Revoke makes reference unreachable. Unknown references are ignored.
	Revoke(reference string)

	// Lookup resolves a live reference
	Lookup(reference string) (data []byte, mimeType string, ok bool)

	// Len reports how many references are live
	Len() int
}

type object struct {
	data     []byte
	mimeType string
}

// MemoryStore is an in-memory ObjectStore.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]object)}
}

func (s *MemoryStore) Register(reference string, data []byte, mimeType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[reference] = object{data: data, mimeType: mimeType}
}

func (s *MemoryStore) Revoke(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, reference)
}

func (s *MemoryStore) Lookup(reference string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[reference]
	return obj.data, obj.mimeType, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
