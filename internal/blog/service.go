// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the blog operations behind the HTTP handlers.
// Every mutating method runs its permission check first, then validates,
// then writes, and finally clears the public page cache.
package blog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"tagpress/internal/models"
	"tagpress/internal/store"
	"tagpress/internal/tagging"
)

// PostRepository is the subset of store.PostStore used by the service.
type PostRepository interface {
	tagging.PostTagger
	FindByID(id uuid.UUID) (*models.Post, error)
	Create(p *models.Post) (*models.Post, error)
	Update(p *models.Post) error
	Delete(id uuid.UUID) error
	List() ([]models.Post, error)
	ListByCategory(categoryID *uuid.UUID) ([]models.Post, error)
	ListByTag(tagID uuid.UUID) ([]models.Post, error)
	Search(q string) ([]models.Post, error)
	CountUncategorized() (int, error)
	TagsFor(postID uuid.UUID) ([]models.Tag, error)
	TagsForPosts(postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error)
}

// TagRepository is the subset of store.TagStore used by the service.
type TagRepository interface {
	tagging.TagRepository
	FindBySlug(slug string) (*models.Tag, error)
	List() ([]models.Tag, error)
}

// CategoryRepository is the subset of store.CategoryStore used by the service.
type CategoryRepository interface {
	List() ([]models.Category, error)
	FindByID(id uuid.UUID) (*models.Category, error)
	FindBySlug(slug string) (*models.Category, error)
	Create(c *models.Category) (*models.Category, error)
	Delete(id uuid.UUID) error
}

// CommentRepository is the subset of store.CommentStore used by the service.
type CommentRepository interface {
	Create(c *models.Comment) (*models.Comment, error)
	FindByID(id uuid.UUID) (*models.Comment, error)
	ListByPost(postID uuid.UUID) ([]models.Comment, error)
	Update(c *models.Comment) error
	Delete(id uuid.UUID) error
}

// FileStore holds uploaded head images and attachments. storage.Client
// implements it.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// PageInvalidator clears cached public pages. cache.PageCache implements it.
type PageInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// EventLog records invalidation events. store.CacheLogStore implements it.
type EventLog interface {
	Log(entityType string, entityID uuid.UUID, action string)
}

// TxFunc runs fn with post and tag repositories bound to one transaction.
// Nothing fn wrote survives unless it returns nil.
type TxFunc func(fn func(posts PostRepository, tags TagRepository) error) error

// StoreTx returns a TxFunc backed by PostgreSQL transactions.
func StoreTx(posts *store.PostStore) TxFunc {
	return func(fn func(PostRepository, TagRepository) error) error {
		return posts.InTx(func(p *store.PostStore, t *store.TagStore) error {
			return fn(p, t)
		})
	}
}

// Deps are the collaborators of a Service. Files, Pages and Events may be
// nil: uploads are then rejected, and caching and event logging skipped.
// A nil Tx runs post writes directly against Posts and Tags.
type Deps struct {
	Posts      PostRepository
	Tags       TagRepository
	Categories CategoryRepository
	Comments   CommentRepository
	Tx         TxFunc
	Files      FileStore
	Pages      PageInvalidator
	Events     EventLog
}

// Service implements the blog operations.
type Service struct {
	posts      PostRepository
	tags       TagRepository
	categories CategoryRepository
	comments   CommentRepository
	tx         TxFunc
	files      FileStore
	pages      PageInvalidator
	events     EventLog
	now        func() time.Time
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	tx := d.Tx
	if tx == nil {
		tx = func(fn func(PostRepository, TagRepository) error) error {
			return fn(d.Posts, d.Tags)
		}
	}
	return &Service{
		posts:      d.Posts,
		tags:       d.Tags,
		categories: d.Categories,
		comments:   d.Comments,
		tx:         tx,
		files:      d.Files,
		pages:      d.Pages,
		events:     d.Events,
		now:        time.Now,
	}
}

// writePost runs write and then replaces the post's tags with those named
// in tagsStr, all in one transaction. write returns the ID of the post it
// wrote.
func (s *Service) writePost(tagsStr string, write func(posts PostRepository) (uuid.UUID, error)) ([]models.Tag, error) {
	var applied []models.Tag
	err := s.tx(func(posts PostRepository, tags TagRepository) error {
		id, err := write(posts)
		if err != nil {
			return err
		}
		applied, err = tagging.New(tags, posts).Apply(tagsStr, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// invalidate purges cached public pages and logs the event. A post shows
// up on the index, category, tag and search pages, so the whole cache is
// cleared.
func (s *Service) invalidate(ctx context.Context, entity string, id uuid.UUID, action string) {
	if s.pages != nil {
		s.pages.InvalidateAll(ctx)
	}
	if s.events != nil {
		s.events.Log(entity, id, action)
	}
}
