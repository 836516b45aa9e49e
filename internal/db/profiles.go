package db

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

const profileColumns = `id, email, full_name, avatar_url, age, location, bio, member_since,
	conversations_count, days_active, level, bond_score, last_active_at,
	current_streak, total_xp, subscription_tier, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.Age, &p.Location, &p.Bio, &p.MemberSince,
		&p.ConversationsCount, &p.DaysActive, &p.Level, &p.BondScore, &p.LastActiveAt,
		&p.CurrentStreak, &p.TotalXP, &p.SubscriptionTier, &p.UpdatedAt,
	)
	return p, err
}

func profileFilterConds(pb *paramBuilder, f ProfileFilter) []string {
	var conds []string
	if f.EverActive {
		conds = append(conds, "last_active_at IS NOT NULL")
	}
	if !f.ActiveFrom.IsZero() {
		conds = append(conds, "last_active_at >= "+pb.add(f.ActiveFrom))
	}
	if !f.ActiveTo.IsZero() {
		conds = append(conds, "last_active_at < "+pb.add(f.ActiveTo))
	}
	if !f.MemberFrom.IsZero() {
		conds = append(conds, "member_since >= "+pb.add(f.MemberFrom))
	}
	return conds
}

// CountProfiles returns the number of profiles matching f
func (db *DB) CountProfiles(ctx context.Context, f ProfileFilter) (int, error) {
	ctx, span := tracer.Start(ctx, "db.count_profiles",
		trace.WithAttributes(attribute.Bool("filter.ever_active", f.EverActive)))
	defer span.End()

	pb := newParamBuilder()
	query := `SELECT COUNT(*) FROM profiles` + whereClause(profileFilterConds(pb, f))

	var count int
	if err := db.conn.QueryRowContext(ctx, query, pb.args...).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	span.SetAttributes(attribute.Int("profiles.count", count))
	return count, nil
}

// ListProfiles returns a page of profiles ordered by member_since, newest
// first, along with the total number of matching profiles.
func (db *DB) ListProfiles(ctx context.Context, q ProfileQuery) ([]models.Profile, int, error) {
	ctx, span := tracer.Start(ctx, "db.list_profiles",
		trace.WithAttributes(
			attribute.Bool("query.search", q.Search != ""),
			attribute.Int("query.limit", q.Limit),
			attribute.Int("query.offset", q.Offset),
		))
	defer span.End()

	pb := newParamBuilder()
	var conds []string
	if q.Search != "" {
		p := pb.add(containsPattern(q.Search))
		conds = append(conds, fmt.Sprintf("(full_name ILIKE %s OR email ILIKE %s)", p, p))
	}
	where := whereClause(conds)

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`+where, pb.args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where +
		` ORDER BY member_since DESC NULLS LAST, id` + limitOffset(pb, q.Limit, q.Offset)

	rows, err := db.conn.QueryContext(ctx, query, pb.args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating profiles: %w", err)
	}

	span.SetAttributes(
		attribute.Int("profiles.count", len(profiles)),
		attribute.Int("profiles.total", total),
	)
	return profiles, total, nil
}

// SearchProfileIDs returns the ids of up to limit profiles whose full name
// contains name.
func (db *DB) SearchProfileIDs(ctx context.Context, name string, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "db.search_profile_ids")
	defer span.End()

	query := `SELECT id FROM profiles WHERE full_name ILIKE $1 ORDER BY id LIMIT $2`
	rows, err := db.conn.QueryContext(ctx, query, containsPattern(name), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan profile id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating profile ids: %w", err)
	}
	span.SetAttributes(attribute.Int("profiles.count", len(ids)))
	return ids, nil
}

// GetProfileSummaries returns name, avatar and bond score for the given
// profile ids. Unknown ids are simply absent from the result.
func (db *DB) GetProfileSummaries(ctx context.Context, ids []string) ([]models.ProfileSummary, error) {
	ctx, span := tracer.Start(ctx, "db.get_profile_summaries",
		trace.WithAttributes(attribute.Int("ids.count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return []models.ProfileSummary{}, nil
	}

	pb := newParamBuilder()
	query := `SELECT id, full_name, avatar_url, bond_score FROM profiles WHERE id = ANY(` +
		pb.addArray(ids) + `::uuid[])`

	rows, err := db.conn.QueryContext(ctx, query, pb.args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get profile summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ProfileSummary, 0, len(ids))
	for rows.Next() {
		var s models.ProfileSummary
		if err := rows.Scan(&s.ID, &s.FullName, &s.AvatarURL, &s.BondScore); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan profile summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating profile summaries: %w", err)
	}
	return summaries, nil
}

// ListBondScores returns every profile's bond score; NULL scores are nil.
func (db *DB) ListBondScores(ctx context.Context) ([]*float64, error) {
	ctx, span := tracer.Start(ctx, "db.list_bond_scores")
	defer span.End()

	rows, err := db.conn.QueryContext(ctx, `SELECT bond_score FROM profiles`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list bond scores: %w", err)
	}
	defer rows.Close()

	scores := make([]*float64, 0)
	for rows.Next() {
		var score *float64
		if err := rows.Scan(&score); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan bond score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating bond scores: %w", err)
	}
	span.SetAttributes(attribute.Int("profiles.count", len(scores)))
	return scores, nil
}

// DeleteProfile permanently deletes a profile
func (db *DB) DeleteProfile(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "db.delete_profile",
		trace.WithAttributes(attribute.String("profile.id", id)))
	defer span.End()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
