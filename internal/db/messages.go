package db

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

func messageFilterConds(pb *paramBuilder, f MessageFilter) []string {
	var conds []string
	if f.Role != "" {
		conds = append(conds, "role = "+pb.add(string(f.Role)))
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= "+pb.add(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at < "+pb.add(f.To))
	}
	return conds
}

// CountMessages returns the number of messages matching f
func (db *DB) CountMessages(ctx context.Context, f MessageFilter) (int, error) {
	ctx, span := tracer.Start(ctx, "db.count_messages",
		trace.WithAttributes(attribute.String("filter.role", string(f.Role))))
	defer span.End()

	pb := newParamBuilder()
	query := `SELECT COUNT(*) FROM messages` + whereClause(messageFilterConds(pb, f))

	var count int
	if err := db.conn.QueryRowContext(ctx, query, pb.args...).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	span.SetAttributes(attribute.Int("messages.count", count))
	return count, nil
}

// buildMessageQuery renders the SELECT for q along with its arguments.
func buildMessageQuery(q MessageQuery) (string, []interface{}) {
	pb := newParamBuilder()
	var conds []string
	if q.UserID != "" {
		conds = append(conds, "user_id = "+pb.add(q.UserID))
	}
	if q.Role != "" {
		conds = append(conds, "role = "+pb.add(string(q.Role)))
	}
	if !q.Since.IsZero() {
		conds = append(conds, "created_at >= "+pb.add(q.Since))
	}
	if !q.Before.IsZero() {
		conds = append(conds, "created_at < "+pb.add(q.Before))
	}
	if q.Search != "" {
		match := "content ILIKE " + pb.add(containsPattern(q.Search))
		if len(q.AuthorIDs) > 0 {
			match = fmt.Sprintf("(%s OR user_id = ANY(%s::uuid[]))", match, pb.addArray(q.AuthorIDs))
		}
		conds = append(conds, match)
	}

	order := "ASC"
	if q.Newest {
		order = "DESC"
	}

	query := `SELECT id, user_id, content, role, created_at FROM messages` +
		whereClause(conds) +
		fmt.Sprintf(" ORDER BY created_at %s, id %s", order, order) +
		limitOffset(pb, q.Limit, 0)
	return query, pb.args
}

// ListMessages returns messages matching q
func (db *DB) ListMessages(ctx context.Context, q MessageQuery) ([]models.Message, error) {
	ctx, span := tracer.Start(ctx, "db.list_messages",
		trace.WithAttributes(
			attribute.Bool("query.by_user", q.UserID != ""),
			attribute.Bool("query.search", q.Search != ""),
			attribute.Int("query.limit", q.Limit),
		))
	defer span.End()

	query, args := buildMessageQuery(q)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.Role, &m.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	span.SetAttributes(attribute.Int("messages.count", len(messages)))
	return messages, nil
}
