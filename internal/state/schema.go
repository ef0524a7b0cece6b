package state

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion must be bumped with every change to schema.sql.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open for a database written by another
// schema version.
var ErrSchemaMismatch = errors.New("state: schema version mismatch")

// migrate creates the schema on an empty database and verifies the version
// of an existing one. There are no upgrade steps: history is disposable.
func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("state: begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("state: apply schema: %w", err)
	}

	var version int
	switch err := tx.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("state: record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("state: read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: %s has version %d, this build expects %d; remove the file to start a new history",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return tx.Commit()
}
