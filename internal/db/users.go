package db

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

// CountUsers returns the total number of accounts
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "db.count_users")
	defer span.End()

	query := `SELECT COUNT(*) FROM users`
	var count int
	err := db.conn.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", count))
	return count, nil
}

// CountUsersSince returns the number of accounts with member_since >= since
func (db *DB) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "db.count_users_since",
		trace.WithAttributes(attribute.String("since", since.Format(time.RFC3339))))
	defer span.End()

	query := `SELECT COUNT(*) FROM users WHERE member_since >= $1`
	var count int
	err := db.conn.QueryRowContext(ctx, query, since).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", count))
	return count, nil
}

// ListUsers returns every account, oldest member first
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, span := tracer.Start(ctx, "db.list_users")
	defer span.End()

	query := `
		SELECT id, email, full_name, avatar_url, age, location, member_since,
			is_verified, is_premium, level, bond_score, bio, is_adult,
			conversations_count, days_active
		FROM users
		ORDER BY member_since ASC NULLS FIRST, id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.AvatarURL, &u.Age, &u.Location, &u.MemberSince,
			&u.IsVerified, &u.IsPremium, &u.Level, &u.BondScore, &u.Bio, &u.IsAdult,
			&u.ConversationsCount, &u.DaysActive,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}
