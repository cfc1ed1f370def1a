package postgres

import (
	"context"
	"fmt"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// InsertAuditEntry appends an immutable audit record. Entries are never
// updated or deleted.
func (d *DB) InsertAuditEntry(ctx context.Context, entry *db.AuditEntry) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO audit_entry (id, action, table_name, record_id, before, after, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.Action, entry.Table, entry.RecordID, entry.Before, entry.After, entry.Actor, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}
