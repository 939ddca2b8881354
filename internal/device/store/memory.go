package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

var _ LocalStore = (*MemoryStore)(nil)

// MemoryStore implementación volátil del LocalStore, para tests y para el
// modo efímero del simulador.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore construye un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load lee y decodifica el valor de una clave. false si no existe.
func (s *MemoryStore) Load(key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decodificar clave %s: %w", key, err)
	}
	return true, nil
}

// Save serializa y guarda el valor bajo la clave.
func (s *MemoryStore) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializar clave %s: %w", key, err)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Remove borra las claves indicadas.
func (s *MemoryStore) Remove(keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.data, k)
	}
	s.mu.Unlock()
	return nil
}
