// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/guard"
	"tagpress/internal/models"
	"tagpress/internal/store"
)

// CreateComment adds a comment by p to an existing post. Any signed-in
// user may comment.
func (s *Service) CreateComment(ctx context.Context, p *models.Principal, postID uuid.UUID, content string) (*models.Comment, error) {
	if err := guard.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if msg := validateComment(content); msg != "" {
		return nil, errs.Invalid(msg)
	}
	if _, err := s.posts.FindByID(postID); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(&models.Comment{PostID: postID, AuthorID: p.ID, Content: content})
	if err != nil {
		return nil, err
	}

	slog.Info("comment created", "comment_id", c.ID, "post_id", postID)
	s.invalidate(ctx, store.EntityComment, c.ID, "create")
	return c, nil
}

// UpdateComment replaces a comment's content. Only its author may edit it.
func (s *Service) UpdateComment(ctx context.Context, p *models.Principal, id uuid.UUID, content string) (*models.Comment, error) {
	c, err := s.comments.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := guard.AuthorizeMutation(p, c); err != nil {
		return nil, err
	}
	if msg := validateComment(content); msg != "" {
		return nil, errs.Invalid(msg)
	}

	c.Content = content
	if err := s.comments.Update(c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, store.EntityComment, c.ID, "update")
	return c, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	c, err := s.comments.FindByID(id)
	if err != nil {
		return err
	}
	if err := guard.AuthorizeMutation(p, c); err != nil {
		return err
	}
	if err := s.comments.Delete(id); err != nil {
		return err
	}

	slog.Info("comment deleted", "comment_id", id, "post_id", c.PostID)
	s.invalidate(ctx, store.EntityComment, id, "delete")
	return nil
}
