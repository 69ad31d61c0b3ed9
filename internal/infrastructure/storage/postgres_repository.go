package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists content items and their tags into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ContentRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a draft and its tags in one transaction and returns the
// assigned identifier. On failure nothing is written.
func (r *PostgresRepository) Insert(ctx context.Context, item domain.ContentItem) (int64, error) {
	if err := item.Type.Validate(); err != nil {
		return 0, err
	}

	query, args, err := psql.Insert("content_items").
		Columns("title", "summary", "body", "source", "published_at", "event_at", "image_url", "type").
		Values(item.Title, item.Summary, item.Body, item.Source, item.PublishedAt, nullTime(item), item.ImageURL, string(item.Type)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, translate("insert item", err)
	}

	if err := insertTags(ctx, tx, id, item.Tags); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	return id, nil
}

// AddTags associates tags with an item; already present tags are ignored.
func (r *PostgresRepository) AddTags(ctx context.Context, itemID int64, tags []string) error {
	return insertTags(ctx, r.db, itemID, tags)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTags(ctx context.Context, db execer, itemID int64, tags []string) error {
	tags = uniqueTags(tags)
	if len(tags) == 0 {
		return nil
	}

	builder := psql.Insert("content_tags").Columns("item_id", "tag")
	for _, tag := range tags {
		builder = builder.Values(itemID, tag)
	}

	query, args, err := builder.Suffix("ON CONFLICT (item_id, tag) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build tag insert: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return translate("insert tags", err)
	}

	return nil
}

// UpdateSummary replaces the summary of one item.
func (r *PostgresRepository) UpdateSummary(ctx context.Context, itemID int64, summary string) error {
	return r.updateColumn(ctx, itemID, "summary", summary)
}

// UpdateImage replaces the image of one item.
func (r *PostgresRepository) UpdateImage(ctx context.Context, itemID int64, imageURL string) error {
	return r.updateColumn(ctx, itemID, "image_url", imageURL)
}

func (r *PostgresRepository) updateColumn(ctx context.Context, itemID int64, column, value string) error {
	query, args, err := psql.Update("content_items").
		Set(column, value).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", column, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate("update "+column, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", column, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s of item %d: %w", column, itemID, domain.ErrNotFound)
	}

	return nil
}

// List returns one page ordered by publication date, newest first.
func (r *PostgresRepository) List(ctx context.Context, q ports.ListQuery) ([]domain.ContentItem, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("list items: negative offset or limit: %w", domain.ErrValidation)
	}

	builder := selectItems().
		OrderBy("i.published_at DESC", "i.id DESC")
	if q.Type != "" {
		builder = builder.Where(sq.Eq{"i.type": string(q.Type)})
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	return r.queryItems(ctx, builder)
}

// GetByIDs loads items in the order of ids; unknown ids are skipped.
func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := r.queryItems(ctx, selectItems().Where(sq.Eq{"i.id": ids}))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	ordered := make([]domain.ContentItem, 0, len(items))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
			delete(byID, id)
		}
	}

	return ordered, nil
}

// All returns every item in feed order.
func (r *PostgresRepository) All(ctx context.Context) ([]domain.ContentItem, error) {
	return r.queryItems(ctx, selectItems().OrderBy("i.published_at DESC", "i.id DESC"))
}

// Count returns the number of stored items.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From("content_items"))
}

// CountByType returns the number of stored items of one type.
func (r *PostgresRepository) CountByType(ctx context.Context, t domain.ContentType) (int, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From("content_items").Where(sq.Eq{"type": string(t)}))
}

func (r *PostgresRepository) count(ctx context.Context, builder sq.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return n, nil
}

// DeleteMalformed removes rows whose title is null, blank or the missing sentinel.
func (r *PostgresRepository) DeleteMalformed(ctx context.Context) (int, error) {
	query, args, err := psql.Delete("content_items").
		Where(sq.Or{
			sq.Expr("title IS NULL"),
			sq.Expr("btrim(title) = ''"),
			sq.Expr("upper(btrim(title)) = ?", "N/A"),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sweep: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete malformed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete malformed rows affected: %w", err)
	}

	return int(affected), nil
}

// WipeAll removes every item; tags and registrations go with them.
func (r *PostgresRepository) WipeAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE content_items RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("wipe items: %w", err)
	}
	return nil
}

func selectItems() sq.SelectBuilder {
	return psql.Select(
		"i.id",
		"COALESCE(i.title, '')",
		"i.summary",
		"i.body",
		"i.source",
		"i.published_at",
		"i.event_at",
		"i.image_url",
		"i.type",
		"COALESCE(array_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')",
	).
		From("content_items i").
		LeftJoin("content_tags t ON t.item_id = i.id").
		GroupBy("i.id")
}

func (r *PostgresRepository) queryItems(ctx context.Context, builder sq.SelectBuilder) ([]domain.ContentItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	var items []domain.ContentItem
	for rows.Next() {
		var (
			item     domain.ContentItem
			eventAt  sql.NullTime
			itemType string
			tags     pq.StringArray
		)
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Summary,
			&item.Body,
			&item.Source,
			&item.PublishedAt,
			&eventAt,
			&item.ImageURL,
			&itemType,
			&tags,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if eventAt.Valid {
			at := eventAt.Time
			item.EventAt = &at
		}
		item.Type = domain.ContentType(itemType)
		item.Tags = []string(tags)
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return items, nil
}

func nullTime(item domain.ContentItem) sql.NullTime {
	if item.EventAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *item.EventAt, Valid: true}
}

// uniqueTags trims and deduplicates tags, keeping first occurrences.
func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
