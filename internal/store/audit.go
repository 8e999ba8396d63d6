package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// AppendAuditLog records an administrative action. Entries are never updated
// or deleted.
func AppendAuditLog(ctx context.Context, db Querier, action string, details any, performedBy int64) (int64, error) {
	payload, err := json.Marshal(details)
	if err != nil {
		return 0, fmt.Errorf("encoding audit details: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (action, details, performed_by) VALUES (?, ?, ?)`,
		action, string(payload), performedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("recording audit log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting audit log id: %w", err)
	}
	return id, nil
}

// ListRecentAuditLogs returns the newest entries first, at most limit of them.
func ListRecentAuditLogs(ctx context.Context, db Querier, limit int) ([]model.AuditLogEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, action, details, performed_by, timestamp
		 FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		var details string
		if err := rows.Scan(&e.ID, &e.Action, &details, &e.PerformedBy, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		e.Details = json.RawMessage(details)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
