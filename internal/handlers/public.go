// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"tagpress/internal/blog"
	"tagpress/internal/cache"
	"tagpress/internal/models"
	"tagpress/internal/render"
)

// Reader is the read side of the blog service.
type Reader interface {
	ListPosts() (*blog.Listing, error)
	GetPost(id uuid.UUID) (*blog.PostDetail, error)
	PostsByCategory(categorySlug string) (*blog.Listing, error)
	PostsByTag(tagSlug string) (*blog.Listing, error)
	Search(q string) (*blog.Listing, error)
	Tags() ([]models.Tag, error)
	Categories() ([]models.Category, error)
}

// Public groups the read-only blog endpoints. Responses are served from
// the Valkey page cache when present and stored there on a miss.
type Public struct {
	blog      Reader
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(reader Reader, pageCache *cache.PageCache) *Public {
	return &Public{blog: reader, pageCache: pageCache}
}

// Index lists all posts.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (any, error) {
		return p.blog.ListPosts()
	})
}

// Post shows one post with its rendered content and comments.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "post")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	p.cached(w, r, func() (any, error) {
		return p.blog.GetPost(id)
	})
}

// Category lists the posts of a category. The slug no_category lists
// posts without one.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	p.cached(w, r, func() (any, error) {
		return p.blog.PostsByCategory(slug)
	})
}

// Tag lists the posts carrying a tag.
func (p *Public) Tag(w http.ResponseWriter, r *http.Request) {
	slug := urlParam(r, "slug")
	p.cached(w, r, func() (any, error) {
		return p.blog.PostsByTag(slug)
	})
}

// Tags lists every tag with its post count.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (any, error) {
		return p.blog.Tags()
	})
}

// Categories lists every category with its post count.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (any, error) {
		return p.blog.Categories()
	})
}

// Search lists posts whose title or tags contain the query. The query is
// taken from the {q} path segment, which is cached like any other page, or
// from the q parameter, which is not.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	if q := urlParam(r, "q"); q != "" {
		p.cached(w, r, func() (any, error) {
			return p.blog.Search(q)
		})
		return
	}

	listing, err := p.blog.Search(r.URL.Query().Get("q"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, listing)
}

// cached serves the request path from the page cache, or loads, encodes
// and stores it.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, load func() (any, error)) {
	ctx := r.Context()
	key := cache.PathKey(r.URL.Path)

	if body, ok := p.pageCache.Get(ctx, key); ok {
		w.Header().Set("X-Cache", "HIT")
		render.Raw(w, http.StatusOK, body)
		return
	}

	v, err := load()
	if err != nil {
		render.Error(w, r, err)
		return
	}
	body, err := render.Marshal(v)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p.pageCache.Set(ctx, key, body)
	w.Header().Set("X-Cache", "MISS")
	render.Raw(w, http.StatusOK, body)
}
