package db

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

// ListXPLogs returns experience point logs matching q
func (db *DB) ListXPLogs(ctx context.Context, q XPLogQuery) ([]models.XPLog, error) {
	ctx, span := tracer.Start(ctx, "db.list_xp_logs")
	defer span.End()

	pb := newParamBuilder()
	var conds []string
	if !q.Since.IsZero() {
		conds = append(conds, "created_at >= "+pb.add(q.Since))
	}
	order := "ASC"
	if q.Newest {
		order = "DESC"
	}
	query := `SELECT id, user_id, amount, source, metadata, created_at FROM xp_logs` +
		whereClause(conds) +
		fmt.Sprintf(" ORDER BY created_at %s, id %s", order, order) +
		limitOffset(pb, q.Limit, 0)

	rows, err := db.conn.QueryContext(ctx, query, pb.args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list xp logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.XPLog, 0)
	for rows.Next() {
		var l models.XPLog
		var metadata []byte
		if err := rows.Scan(&l.ID, &l.UserID, &l.Amount, &l.Source, &metadata, &l.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan xp log: %w", err)
		}
		if len(metadata) > 0 {
			l.Metadata = metadata
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating xp logs: %w", err)
	}

	span.SetAttributes(attribute.Int("xp_logs.count", len(logs)))
	return logs, nil
}
