package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"forumbridge/internal/model"
	"forumbridge/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateChannel inserts a new channel and populates its ID and CreatedAt.
func (s *SQLite) CreateChannel(ctx context.Context, ch *model.Channel) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO channels (chat_id, name, created_at) VALUES (?, ?, ?)`,
		ch.ChatID, ch.Name, now,
	)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	ch.ID = id
	ch.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetChannel returns a single channel by its ID.
func (s *SQLite) GetChannel(ctx context.Context, id int64) (*model.Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, name, created_at FROM channels WHERE id = ?`, id,
	)
	return scanChannel(row)
}

// ChannelByChatID returns the channel bound to the given chat.
func (s *SQLite) ChannelByChatID(ctx context.Context, chatID int64) (*model.Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, name, created_at FROM channels WHERE chat_id = ?`, chatID,
	)
	return scanChannel(row)
}

// ListChannels returns all channels.
func (s *SQLite) ListChannels(ctx context.Context) ([]model.Channel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, name, created_at FROM channels ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

// CreateRule inserts a new rule and populates its ID and CreatedAt.
func (s *SQLite) CreateRule(ctx context.Context, r *model.Rule) error {
	tags, err := marshalTags(r.Tags)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (channel_id, type, filter, category_id, group_id, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ChannelID, string(r.Type), string(r.Filter), categoryColumn(r), groupColumn(r), tags, now,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListRules returns all rules scoped to the given channel, ordered by ID.
func (s *SQLite) ListRules(ctx context.Context, channelID int64) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel_id, type, filter, category_id, group_id, tags, created_at
		 FROM rules WHERE channel_id = ? ORDER BY id`, channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpdateRule persists changes to an existing rule.
func (s *SQLite) UpdateRule(ctx context.Context, r *model.Rule) error {
	tags, err := marshalTags(r.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE rules SET type = ?, filter = ?, category_id = ?, group_id = ?, tags = ?
		 WHERE id = ?`,
		string(r.Type), string(r.Filter), categoryColumn(r), groupColumn(r), tags, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule by its ID.
func (s *SQLite) DeleteRule(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// CategoryBySlug resolves a category by its slug.
func (s *SQLite) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name FROM categories WHERE slug = ?`, slug,
	)
	return scanCategory(row)
}

// CategoryByID resolves a category by its ID.
func (s *SQLite) CategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name FROM categories WHERE id = ?`, id,
	)
	return scanCategory(row)
}

// AllCategorySlugs returns the slugs of every known category.
func (s *SQLite) AllCategorySlugs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM categories ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("query category slugs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// UpsertCategory inserts a category if its slug is unknown and returns
// the stored record either way.
func (s *SQLite) UpsertCategory(ctx context.Context, slug, name string) (*model.Category, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (slug, name) VALUES (?, ?)
		 ON CONFLICT (slug) DO UPDATE SET name = excluded.name`,
		slug, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}
	return s.CategoryBySlug(ctx, slug)
}

// TagByName resolves a tag by its name.
func (s *SQLite) TagByName(ctx context.Context, name string) (*model.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name,
	)
	var t model.Tag
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &t, nil
}

// UpsertTag inserts a tag if its name is unknown and returns the stored record.
func (s *SQLite) UpsertTag(ctx context.Context, name string) (*model.Tag, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert tag: %w", err)
	}
	return s.TagByName(ctx, name)
}

// GroupByID resolves a forum group by its ID.
func (s *SQLite) GroupByID(ctx context.Context, id int64) (*model.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM forum_groups WHERE id = ?`, id,
	)
	var g model.Group
	if err := row.Scan(&g.ID, &g.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return &g, nil
}

// UpsertGroup inserts or updates a forum group under its forum-assigned ID.
func (s *SQLite) UpsertGroup(ctx context.Context, g *model.Group) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forum_groups (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		g.ID, g.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

// MarkTopicSeen records that a forum topic has been processed.
func (s *SQLite) MarkTopicSeen(ctx context.Context, guid string) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_topics (guid, seen_at) VALUES (?, ?)`,
		guid, now,
	)
	if err != nil {
		return fmt.Errorf("mark topic seen: %w", err)
	}
	return nil
}

// TopicSeen checks whether a forum topic has already been processed.
func (s *SQLite) TopicSeen(ctx context.Context, guid string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_topics WHERE guid = ?`, guid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check topic seen: %w", err)
	}
	return count > 0, nil
}

// categoryColumn maps a rule's category scope to the nullable column
// value: NULL for "all categories" and for group rules.
func categoryColumn(r *model.Rule) any {
	if r.Type != model.TypeNormal || r.Category.All {
		return nil
	}
	return r.Category.CategoryID
}

func groupColumn(r *model.Rule) any {
	if r.Type == model.TypeNormal {
		return nil
	}
	return r.GroupID
}

func marshalTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanChannel(row scannable) (*model.Channel, error) {
	var ch model.Channel
	var created sql.NullString
	err := row.Scan(&ch.ID, &ch.ChatID, &ch.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan channel: %w", err)
	}
	if created.Valid {
		ch.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &ch, nil
}

func scanCategory(row scannable) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Slug, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

func scanRule(row scannable) (model.Rule, error) {
	var r model.Rule
	var typeStr, filterStr string
	var categoryID, groupID sql.NullInt64
	var tags, created sql.NullString
	err := row.Scan(&r.ID, &r.ChannelID, &typeStr, &filterStr, &categoryID, &groupID, &tags, &created)
	if err != nil {
		return r, fmt.Errorf("scan rule: %w", err)
	}
	r.Type = model.RuleType(typeStr)
	r.Filter = model.RuleFilter(filterStr)
	if r.Type == model.TypeNormal {
		if categoryID.Valid {
			r.Category = model.OneCategory(categoryID.Int64)
		} else {
			r.Category = model.AllCategories()
		}
	}
	if groupID.Valid {
		r.GroupID = groupID.Int64
	}
	if tags.Valid {
		var list []string
		if err := json.Unmarshal([]byte(tags.String), &list); err != nil {
			return r, fmt.Errorf("unmarshal tags: %w", err)
		}
		r.Tags = model.NormalizeTags(list)
	}
	if created.Valid {
		r.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return r, nil
}
