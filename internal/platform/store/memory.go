package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store. It backs tests and single-run usage where
// persistence across restarts is not needed.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[Namespace]map[string]json.RawMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		namespaces: make(map[Namespace]map[string]json.RawMessage),
	}
}

// Read returns a copy of the full map stored under ns.
func (m *Memory) Read(_ context.Context, ns Namespace) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return copyNamespace(m.namespaces[ns]), nil
}

// Write replaces the full map stored under ns with a copy of data.
func (m *Memory) Write(_ context.Context, ns Namespace, data map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.namespaces[ns] = copyNamespace(data)
	return nil
}

func copyNamespace(data map[string]json.RawMessage) map[string]json.RawMessage {
	copied := make(map[string]json.RawMessage, len(data))
	for key, value := range data {
		raw := make(json.RawMessage, len(value))
		copy(raw, value)
		copied[key] = raw
	}

	return copied
}
