// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/guard"
	"tagpress/internal/markdown"
	"tagpress/internal/models"
	"tagpress/internal/storage"
	"tagpress/internal/store"
)

// Upload is a file submitted with a post form.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PostInput holds the fields of the post create and update forms.
type PostInput struct {
	Title      string
	HookText   string
	Content    string
	CategoryID *uuid.UUID // nil leaves the post uncategorized
	TagsStr    string     // comma or semicolon separated

	HeadImage *Upload // nil keeps the current image
	File      *Upload // nil keeps the current attachment
}

// PostDetail is a post with everything its detail page shows.
type PostDetail struct {
	*models.Post
	ContentHTML  string        `json:"content_html"`
	HeadImageURL string        `json:"head_image_url,omitempty"`
	FileURL      string        `json:"file_url,omitempty"`
	FileExt      string        `json:"file_ext,omitempty"`
	Comments     []CommentView `json:"comments"`
}

// CommentView is a comment with its rendered body.
type CommentView struct {
	models.Comment
	ContentHTML string `json:"content_html"`
	Edited      bool   `json:"edited"`
}

// CreatePost creates a post authored by p from a submitted form. Only
// staff and superusers may create posts.
func (s *Service) CreatePost(ctx context.Context, p *models.Principal, in PostInput) (*models.Post, error) {
	if err := guard.AuthorizeCreation(p); err != nil {
		return nil, err
	}
	if msg := validatePost(in); msg != "" {
		return nil, errs.Invalid(msg)
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}

	authorID := p.ID
	post := &models.Post{
		Title:      strings.TrimSpace(in.Title),
		HookText:   strings.TrimSpace(in.HookText),
		Content:    in.Content,
		AuthorID:   &authorID,
		CategoryID: in.CategoryID,
	}

	uploaded, err := s.storeUploads(ctx, post, in)
	if err != nil {
		return nil, err
	}

	var created *models.Post
	tags, err := s.writePost(in.TagsStr, func(posts PostRepository) (uuid.UUID, error) {
		var err error
		if created, err = posts.Create(post); err != nil {
			return uuid.Nil, err
		}
		return created.ID, nil
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	created.Tags = tags

	slog.Info("post created", "post_id", created.ID, "author_id", authorID, "tags", len(tags))
	s.invalidate(ctx, store.EntityPost, created.ID, "create")
	return created, nil
}

// UpdatePost replaces the fields and tag set of a post. Only the post's
// author may update it.
func (s *Service) UpdatePost(ctx context.Context, p *models.Principal, id uuid.UUID, in PostInput) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := guard.AuthorizeMutation(p, post); err != nil {
		return nil, err
	}
	if msg := validatePost(in); msg != "" {
		return nil, errs.Invalid(msg)
	}
	if err := s.checkCategory(in.CategoryID); err != nil {
		return nil, err
	}

	oldImage, oldFile := post.HeadImageKey, post.FileKey

	post.Title = strings.TrimSpace(in.Title)
	post.HookText = strings.TrimSpace(in.HookText)
	post.Content = in.Content
	post.CategoryID = in.CategoryID

	uploaded, err := s.storeUploads(ctx, post, in)
	if err != nil {
		return nil, err
	}
	tags, err := s.writePost(in.TagsStr, func(posts PostRepository) (uuid.UUID, error) {
		return post.ID, posts.Update(post)
	})
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	// Replaced objects are only removed once the row points elsewhere.
	var replaced []string
	if in.HeadImage != nil && oldImage != nil {
		replaced = append(replaced, *oldImage)
	}
	if in.File != nil && oldFile != nil {
		replaced = append(replaced, *oldFile)
	}
	s.discard(ctx, replaced)
	post.Tags = tags

	slog.Info("post updated", "post_id", post.ID, "tags", len(tags))
	s.invalidate(ctx, store.EntityPost, post.ID, "update")
	return post, nil
}

// DeletePost removes a post with its comments and tag links. Only the
// post's author may delete it.
func (s *Service) DeletePost(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return err
	}
	if err := guard.AuthorizeMutation(p, post); err != nil {
		return err
	}
	if err := s.posts.Delete(id); err != nil {
		return err
	}

	var keys []string
	for _, k := range []*string{post.HeadImageKey, post.FileKey} {
		if k != nil {
			keys = append(keys, *k)
		}
	}
	s.discard(ctx, keys)

	slog.Info("post deleted", "post_id", id, "by", p.ID)
	s.invalidate(ctx, store.EntityPost, id, "delete")
	return nil
}

// GetPost returns a post with its category, tags, comments and rendered
// content.
func (s *Service) GetPost(id uuid.UUID) (*PostDetail, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}

	tags, err := s.posts.TagsFor(id)
	if err != nil {
		return nil, err
	}
	post.Tags = nonNilTags(tags)

	if post.CategoryID != nil {
		cat, err := s.categories.FindByID(*post.CategoryID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		post.Category = cat
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", id, err)
	}

	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		body, err := markdown.CommentToHTML(c.Content)
		if err != nil {
			return nil, fmt.Errorf("render comment %s: %w", c.ID, err)
		}
		views = append(views, CommentView{Comment: c, ContentHTML: body, Edited: c.IsEdited()})
	}

	d := &PostDetail{
		Post:        post,
		ContentHTML: html,
		FileExt:     post.FileExt(),
		Comments:    views,
	}
	if s.files != nil {
		if post.HeadImageKey != nil {
			d.HeadImageURL = s.files.FileURL(*post.HeadImageKey)
		}
		if post.FileKey != nil {
			d.FileURL = s.files.FileURL(*post.FileKey)
		}
	}
	return d, nil
}

// checkCategory verifies that a chosen category exists.
func (s *Service) checkCategory(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.FindByID(*id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.Invalid("Unknown category.")
		}
		return err
	}
	return nil
}

// storeUploads writes the submitted files and points the post at them.
// It returns the keys written so callers can roll them back.
func (s *Service) storeUploads(ctx context.Context, post *models.Post, in PostInput) ([]string, error) {
	if in.HeadImage == nil && in.File == nil {
		return nil, nil
	}
	if s.files == nil {
		return nil, errs.Invalid("File uploads are not configured.")
	}
	if in.HeadImage != nil && !strings.HasPrefix(in.HeadImage.ContentType, "image/") {
		return nil, errs.Invalid("Head image must be an image.")
	}

	now := s.now()
	var written []string

	if in.HeadImage != nil {
		key := storage.DatedKey(storage.ImagePrefix, now, in.HeadImage.Name)
		if err := s.files.Upload(ctx, key, in.HeadImage.ContentType, in.HeadImage.Body, in.HeadImage.Size); err != nil {
			return nil, err
		}
		written = append(written, key)
		post.HeadImageKey = &key
	}

	if in.File != nil {
		key := storage.DatedKey(storage.FilePrefix, now, in.File.Name)
		contentType := in.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.files.Upload(ctx, key, contentType, in.File.Body, in.File.Size); err != nil {
			s.discard(ctx, written)
			return nil, err
		}
		written = append(written, key)
		name := in.File.Name
		post.FileKey = &key
		post.FileName = &name
	}

	return written, nil
}

// discard deletes stored objects, logging failures.
func (s *Service) discard(ctx context.Context, keys []string) {
	if s.files == nil {
		return
	}
	for _, k := range keys {
		if err := s.files.Delete(ctx, k); err != nil {
			slog.Warn("failed to delete stored file", "key", k, "error", err)
		}
	}
}

func nonNilTags(tags []models.Tag) []models.Tag {
	if tags == nil {
		return []models.Tag{}
	}
	return tags
}
