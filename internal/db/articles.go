package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MJServices/neural-admin-panel/internal/models"
)

// buildArticleWhere renders the filter shared by the page and count queries.
func buildArticleWhere(pb *paramBuilder, q ArticleQuery) string {
	var conds []string
	if q.Search != "" {
		conds = append(conds, "title ILIKE "+pb.add(containsPattern(q.Search)))
	}
	if q.Tag != "" {
		conds = append(conds, "tags @> "+pb.addArray([]string{q.Tag}))
	}
	if q.Status != "" {
		conds = append(conds, "status = "+pb.add(q.Status))
	}
	return whereClause(conds)
}

// ListArticles returns a page of blog posts and the total number matching q
func (db *DB) ListArticles(ctx context.Context, q ArticleQuery) ([]models.BlogPost, int, error) {
	ctx, span := tracer.Start(ctx, "db.list_articles",
		trace.WithAttributes(
			attribute.String("query.tag", q.Tag),
			attribute.String("query.status", q.Status),
			attribute.String("query.sort", string(q.Sort)),
			attribute.Int("query.limit", q.Limit),
			attribute.Int("query.offset", q.Offset),
		))
	defer span.End()

	pb := newParamBuilder()
	where := buildArticleWhere(pb, q)

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`+where, pb.args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	order := "DESC"
	if q.Sort == ArticleSortOldest {
		order = "ASC"
	}
	query := `
		SELECT id, title, slug, content, excerpt, cover_image, author_id, status,
			published_at, created_at, updated_at, tags
		FROM blog_posts` + where +
		fmt.Sprintf(" ORDER BY created_at %s NULLS LAST, id %s", order, order) +
		limitOffset(pb, q.Limit, q.Offset)

	rows, err := db.conn.QueryContext(ctx, query, pb.args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	posts := make([]models.BlogPost, 0)
	for rows.Next() {
		var p models.BlogPost
		var tags pq.StringArray
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage, &p.AuthorID, &p.Status,
			&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &tags,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		if len(tags) > 0 {
			p.Tags = tags
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating articles: %w", err)
	}

	span.SetAttributes(
		attribute.Int("articles.count", len(posts)),
		attribute.Int("articles.total", total),
	)
	return posts, total, nil
}

// ListArticleTags returns the tag list of every blog post in creation order.
// Posts without tags contribute an empty list.
func (db *DB) ListArticleTags(ctx context.Context) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "db.list_article_tags")
	defer span.End()

	rows, err := db.conn.QueryContext(ctx, `SELECT tags FROM blog_posts ORDER BY created_at ASC NULLS FIRST, id`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list article tags: %w", err)
	}
	defer rows.Close()

	all := make([][]string, 0)
	for rows.Next() {
		var tags pq.StringArray
		if err := rows.Scan(&tags); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan article tags: %w", err)
		}
		if tags == nil {
			tags = pq.StringArray{}
		}
		all = append(all, []string(tags))
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating article tags: %w", err)
	}
	span.SetAttributes(attribute.Int("articles.count", len(all)))
	return all, nil
}

// DeleteArticle permanently deletes a blog post
func (db *DB) DeleteArticle(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "db.delete_article",
		trace.WithAttributes(attribute.String("article.id", id)))
	defer span.End()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete article: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// UpdateArticle applies the non-nil fields of patch and bumps updated_at.
// Returns ErrArticleNotFound when no row has the id.
func (db *DB) UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) error {
	ctx, span := tracer.Start(ctx, "db.update_article",
		trace.WithAttributes(attribute.String("article.id", id)))
	defer span.End()

	pb := newParamBuilder()
	sets := []string{"updated_at = NOW()"}
	if patch.Title != nil {
		sets = append(sets, "title = "+pb.add(*patch.Title))
	}
	if patch.Excerpt != nil {
		sets = append(sets, "excerpt = "+pb.add(*patch.Excerpt))
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = "+pb.addArray(patch.Tags))
	}
	if patch.Status != nil {
		sets = append(sets, "status = "+pb.add(*patch.Status))
	}
	query := `UPDATE blog_posts SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + pb.add(id)

	result, err := db.conn.ExecContext(ctx, query, pb.args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update article: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}
