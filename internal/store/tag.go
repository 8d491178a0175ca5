// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

// TagStore manages tags. Names and slugs are each protected by a unique
// index, which is what resolves concurrent creation of the same tag.
type TagStore struct {
	q querier
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{q: db}
}

const tagColumns = `id, name, slug, created_at`

func scanTag(row scanner) (*models.Tag, error) {
	var t models.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// findOne runs a single-row tag query and maps sql.ErrNoRows to ErrNotFound.
func (s *TagStore) findOne(op, query string, arg any) (*models.Tag, error) {
	t, err := scanTag(s.q.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("tag")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// FindByName retrieves a tag whose name exactly (case-sensitively) equals name.
func (s *TagStore) FindByName(name string) (*models.Tag, error) {
	return s.findOne("find tag by name", `SELECT `+tagColumns+` FROM tags WHERE name = $1`, name)
}

// FindBySlug retrieves a tag by its slug.
func (s *TagStore) FindBySlug(slug string) (*models.Tag, error) {
	return s.findOne("find tag by slug", `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
}

// Create inserts a new tag. If another row already holds the name or the
// slug, nothing is written and ErrConflict is returned; the caller is
// expected to look the tag up again.
func (s *TagStore) Create(t *models.Tag) (*models.Tag, error) {
	row := s.q.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		RETURNING `+tagColumns,
		t.Name, t.Slug,
	)
	created, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return nil, fmt.Errorf("create tag %q: %w", t.Name, errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return created, nil
}

// List returns all tags ordered by name, with post counts.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.q.Query(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id) AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
