// Package store persists the tracker's two top-level namespaces as whole
// JSON object blobs. Backends expose plain read-full-map / write-full-map
// semantics without a cross-namespace transaction, so concurrent writers from
// separate processes are last-writer-wins; the ledger is expected to be the
// single writer.
package store

import (
	"context"
	"encoding/json"
)

// Namespace names one persisted top-level map.
type Namespace string

// Persisted namespaces.
const (
	NamespaceProducts     Namespace = "products"
	NamespacePriceHistory Namespace = "price_history"
)

// Store reads and writes whole namespace maps.
type Store interface {
	// Read returns the full map stored under ns. A namespace that was never
	// written reads as an empty map.
	Read(ctx context.Context, ns Namespace) (map[string]json.RawMessage, error)
	// Write replaces the full map stored under ns.
	Write(ctx context.Context, ns Namespace, data map[string]json.RawMessage) error
}

func encodeNamespace(data map[string]json.RawMessage) ([]byte, error) {
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return json.Marshal(data)
}

func decodeNamespace(blob []byte) (map[string]json.RawMessage, error) {
	if len(blob) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}

	return data, nil
}
