// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

// PostStore handles post and post_tags database operations.
type PostStore struct {
	db *sql.DB // nil when bound to a transaction
	q  querier
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db, q: db}
}

const postColumns = `p.id, p.title, p.hook_text, p.content, p.head_image_key,
	p.file_key, p.file_name, p.author_id, p.category_id, p.created_at, p.updated_at`

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.HookText, &p.Content, &p.HeadImageKey,
		&p.FileKey, &p.FileName, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// queryPosts runs a multi-row post query.
func (s *PostStore) queryPosts(op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post by its UUID.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.q.QueryRow(`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("post")
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID and
// timestamps. Tags are attached separately.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.q.QueryRow(`
		INSERT INTO posts AS p (title, hook_text, content, head_image_key,
		                        file_key, file_name, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Title, p.HookText, p.Content, p.HeadImageKey,
		p.FileKey, p.FileName, p.AuthorID, p.CategoryID,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update modifies an existing post's fields and bumps updated_at. The
// author is never changed.
func (s *PostStore) Update(p *models.Post) error {
	err := s.q.QueryRow(`
		UPDATE posts SET
			title = $1, hook_text = $2, content = $3, head_image_key = $4,
			file_key = $5, file_name = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, p.Title, p.HookText, p.Content, p.HeadImageKey,
		p.FileKey, p.FileName, p.CategoryID, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("post")
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Its comments and tag links are removed by
// ON DELETE CASCADE.
func (s *PostStore) Delete(id uuid.UUID) error {
	res, err := s.q.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("post")
	}
	return nil
}

// InTx runs fn with a post store and a tag store bound to one
// transaction. The transaction commits when fn returns nil and is rolled
// back otherwise, so a post write and its tag changes land together.
func (s *PostStore) InTx(fn func(posts *PostStore, tags *TagStore) error) error {
	if s.db == nil {
		return errors.New("post store: nested transaction")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PostStore{q: tx}, &TagStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns all posts, newest first.
func (s *PostStore) List() ([]models.Post, error) {
	return s.queryPosts("list posts", `SELECT `+postColumns+` FROM posts p ORDER BY p.created_at DESC`)
}

// ListByCategory returns the posts of a category, newest first. A nil
// categoryID selects posts without a category.
func (s *PostStore) ListByCategory(categoryID *uuid.UUID) ([]models.Post, error) {
	if categoryID == nil {
		return s.queryPosts("list uncategorized posts", `
			SELECT `+postColumns+` FROM posts p
			WHERE p.category_id IS NULL
			ORDER BY p.created_at DESC`)
	}
	return s.queryPosts("list posts by category", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.category_id = $1
		ORDER BY p.created_at DESC`, *categoryID)
}

// ListByTag returns the posts carrying a tag, newest first.
func (s *PostStore) ListByTag(tagID uuid.UUID) ([]models.Post, error) {
	return s.queryPosts("list posts by tag", `
		SELECT `+postColumns+` FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE pt.tag_id = $1
		ORDER BY p.created_at DESC`, tagID)
}

// Search returns posts whose title or any tag name contains q,
// case-insensitively, newest first.
func (s *PostStore) Search(q string) ([]models.Post, error) {
	return s.queryPosts("search posts", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.title ILIKE $1
		   OR EXISTS (
		       SELECT 1 FROM post_tags pt
		       JOIN tags t ON t.id = pt.tag_id
		       WHERE pt.post_id = p.id AND t.name ILIKE $1
		   )
		ORDER BY p.created_at DESC`, containsPattern(q))
}

// CountUncategorized returns the number of posts without a category.
func (s *PostStore) CountUncategorized() (int, error) {
	var n int
	if err := s.q.QueryRow(`SELECT COUNT(*) FROM posts WHERE category_id IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count uncategorized posts: %w", err)
	}
	return n, nil
}

// ClearTags detaches every tag from a post. Tag rows are kept.
func (s *PostStore) ClearTags(postID uuid.UUID) error {
	if _, err := s.q.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	return nil
}

// AttachTag links a tag to a post. Attaching an already linked tag is a no-op.
func (s *PostStore) AttachTag(postID, tagID uuid.UUID) error {
	_, err := s.q.Exec(`
		INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, tagID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// TagsFor returns the tags attached to a post, ordered by name.
func (s *PostStore) TagsFor(postID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.q.Query(`
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("post tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// TagsForPosts returns the tags of several posts keyed by post ID. Used to
// decorate list pages with one query.
func (s *PostStore) TagsForPosts(postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	result := make(map[uuid.UUID][]models.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(postIDs))
	for i, id := range postIDs {
		ids[i] = id.String()
	}

	rows, err := s.q.Query(`
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("tags for posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tags for posts: %w", err)
		}
		result[postID] = append(result[postID], t)
	}
	return result, rows.Err()
}
