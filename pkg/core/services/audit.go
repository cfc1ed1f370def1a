package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// AuditStore defines the write-only audit sink
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, entry *db.AuditEntry) error
}

// recordAudit writes an immutable audit entry. Audit failures never abort the
// operation that produced them; they are logged and dropped.
func recordAudit(ctx context.Context, store AuditStore, logger *zap.Logger, action, table, recordID, actor string, before, after any) {
	entry := &db.AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Table:     table,
		RecordID:  recordID,
		Before:    auditJSON(before),
		After:     auditJSON(after),
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.InsertAuditEntry(ctx, entry); err != nil {
		logger.Error("Failed to write audit entry",
			zap.String("action", action),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}

func auditJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// assignmentSnapshot is the audit shape for an assignment's state
type assignmentSnapshot struct {
	EventID   string `json:"event_id"`
	PersonID  string `json:"person_id"`
	SlotIndex int    `json:"slot_index"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

func snapshotAssignment(a *db.Assignment) assignmentSnapshot {
	return assignmentSnapshot{
		EventID:   a.EventID,
		PersonID:  a.PersonID,
		SlotIndex: a.SlotIndex,
		Status:    a.Status,
		Reason:    a.Reason,
	}
}
