// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"strings"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

// uncategorized stands in for the missing category on the no_category page.
var uncategorized = models.Category{Name: "Uncategorized", Slug: models.NoCategorySlug}

// Listing is a page of posts plus the sidebar data every list page shows.
type Listing struct {
	Posts              []models.Post     `json:"posts"`
	Categories         []models.Category `json:"categories"`
	UncategorizedCount int               `json:"uncategorized_count"`

	// At most one of these describes what the list is filtered by.
	Category *models.Category `json:"category,omitempty"`
	Tag      *models.Tag      `json:"tag,omitempty"`
	Query    string           `json:"query,omitempty"`
}

// ListPosts returns all posts, newest first.
func (s *Service) ListPosts() (*Listing, error) {
	posts, err := s.posts.List()
	if err != nil {
		return nil, err
	}
	return s.listing(posts)
}

// PostsByCategory returns the posts of the category with the given slug.
// The slug "no_category" selects posts without a category.
func (s *Service) PostsByCategory(categorySlug string) (*Listing, error) {
	if categorySlug == models.NoCategorySlug {
		posts, err := s.posts.ListByCategory(nil)
		if err != nil {
			return nil, err
		}
		l, err := s.listing(posts)
		if err != nil {
			return nil, err
		}
		c := uncategorized
		c.PostCount = l.UncategorizedCount
		l.Category = &c
		return l, nil
	}

	cat, err := s.categories.FindBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByCategory(&cat.ID)
	if err != nil {
		return nil, err
	}
	l, err := s.listing(posts)
	if err != nil {
		return nil, err
	}
	cat.PostCount = len(posts)
	l.Category = cat
	return l, nil
}

// PostsByTag returns the posts carrying the tag with the given slug.
func (s *Service) PostsByTag(tagSlug string) (*Listing, error) {
	tag, err := s.tags.FindBySlug(tagSlug)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByTag(tag.ID)
	if err != nil {
		return nil, err
	}
	l, err := s.listing(posts)
	if err != nil {
		return nil, err
	}
	tag.PostCount = len(posts)
	l.Tag = tag
	return l, nil
}

// Search returns posts whose title or tag names contain q.
func (s *Service) Search(q string) (*Listing, error) {
	if msg := validateSearch(q); msg != "" {
		return nil, errs.Invalid(msg)
	}
	q = strings.TrimSpace(q)
	posts, err := s.posts.Search(q)
	if err != nil {
		return nil, err
	}
	l, err := s.listing(posts)
	if err != nil {
		return nil, err
	}
	l.Query = q
	return l, nil
}

// Tags returns every tag with its post count.
func (s *Service) Tags() ([]models.Tag, error) {
	tags, err := s.tags.List()
	if err != nil {
		return nil, err
	}
	return nonNilTags(tags), nil
}

// Categories returns every category with its post count.
func (s *Service) Categories() ([]models.Category, error) {
	cats, err := s.categories.List()
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// listing decorates posts with their tags and categories and adds the
// sidebar data.
func (s *Service) listing(posts []models.Post) (*Listing, error) {
	cats, err := s.Categories()
	if err != nil {
		return nil, err
	}
	uncat, err := s.posts.CountUncategorized()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	tags, err := s.posts.TagsForPosts(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}
	for i := range posts {
		posts[i].Tags = nonNilTags(tags[posts[i].ID])
		if posts[i].CategoryID != nil {
			posts[i].Category = byID[*posts[i].CategoryID]
		}
	}

	if posts == nil {
		posts = []models.Post{}
	}
	return &Listing{Posts: posts, Categories: cats, UncategorizedCount: uncat}, nil
}
