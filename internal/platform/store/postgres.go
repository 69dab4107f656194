package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"

	pgmodels "pricetracker/internal/platform/store/gen/postgres/public/model"
	"pricetracker/internal/platform/store/gen/postgres/public/table"
)

// Postgres is a Store backed by a Postgres namespace_blob table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Store over db.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{db: db}
}

// Read returns the full map stored under ns.
func (p Postgres) Read(ctx context.Context, ns Namespace) (map[string]json.RawMessage, error) {
	var blob pgmodels.NamespaceBlob

	err := table.NamespaceBlob.SELECT(table.NamespaceBlob.AllColumns).
		WHERE(table.NamespaceBlob.Name.EQ(pg.String(string(ns)))).
		QueryContext(ctx, p.db, &blob)

	if errors.Is(err, qrm.ErrNoRows) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read namespace %q: %w", ns, err)
	}

	data, err := decodeNamespace([]byte(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("can't decode namespace %q: %w", ns, err)
	}

	return data, nil
}

// Write replaces the full map stored under ns.
func (p Postgres) Write(ctx context.Context, ns Namespace, data map[string]json.RawMessage) error {
	encoded, err := encodeNamespace(data)
	if err != nil {
		return fmt.Errorf("can't encode namespace %q: %w", ns, err)
	}

	blob := pgmodels.NamespaceBlob{
		Name: string(ns),
		Data: string(encoded),
	}

	_, err = table.NamespaceBlob.INSERT(table.NamespaceBlob.AllColumns).
		MODEL(blob).
		ON_CONFLICT(table.NamespaceBlob.Name).
		DO_UPDATE(
			pg.SET(
				table.NamespaceBlob.Data.SET(table.NamespaceBlob.EXCLUDED.Data),
			),
		).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't write namespace %q: %w", ns, err)
	}

	return nil
}
