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

// CommentStore handles comment database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, author_id, content, created_at, modified_at`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new comment and returns it.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	created, err := scanComment(s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING `+commentColumns,
		c.PostID, c.AuthorID, c.Content,
	))
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return created, nil
}

// FindByID retrieves a comment by ID.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("comment")
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments in posting order, with author names.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, c.modified_at,
		       u.display_name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.ModifiedAt,
			&c.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Update replaces a comment's content and bumps modified_at.
func (s *CommentStore) Update(c *models.Comment) error {
	err := s.db.QueryRow(`
		UPDATE comments SET content = $1, modified_at = NOW()
		WHERE id = $2
		RETURNING modified_at
	`, c.Content, c.ID).Scan(&c.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("comment")
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment by ID.
func (s *CommentStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("comment")
	}
	return nil
}
