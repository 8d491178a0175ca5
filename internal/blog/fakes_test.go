// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

// memDB is an in-memory stand-in for the PostgreSQL schema, including its
// cascade and set-null rules.
type memDB struct {
	mu         sync.Mutex
	posts      map[uuid.UUID]*models.Post
	tags       map[uuid.UUID]*models.Tag
	categories map[uuid.UUID]*models.Category
	comments   map[uuid.UUID]*models.Comment
	links      map[uuid.UUID]map[uuid.UUID]bool // post -> tags
	clock      time.Time
	attachErr  error // returned by AttachTag when set
}

func newMemDB() *memDB {
	return &memDB{
		posts:      map[uuid.UUID]*models.Post{},
		tags:       map[uuid.UUID]*models.Tag{},
		categories: map[uuid.UUID]*models.Category{},
		comments:   map[uuid.UUID]*models.Comment{},
		links:      map[uuid.UUID]map[uuid.UUID]bool{},
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering is stable.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Minute)
	return db.clock
}

func (db *memDB) deps() Deps {
	return Deps{
		Posts:      fakePosts{db},
		Tags:       fakeTags{db},
		Categories: fakeCategories{db},
		Comments:   fakeComments{db},
		Tx:         db.inTx,
	}
}

// inTx snapshots the posts, tags and links and restores them if fn fails.
func (db *memDB) inTx(fn func(PostRepository, TagRepository) error) error {
	db.mu.Lock()
	posts := make(map[uuid.UUID]*models.Post, len(db.posts))
	for id, p := range db.posts {
		cp := *p
		posts[id] = &cp
	}
	tags := make(map[uuid.UUID]*models.Tag, len(db.tags))
	for id, t := range db.tags {
		cp := *t
		tags[id] = &cp
	}
	links := make(map[uuid.UUID]map[uuid.UUID]bool, len(db.links))
	for pid, set := range db.links {
		links[pid] = make(map[uuid.UUID]bool, len(set))
		for tid := range set {
			links[pid][tid] = true
		}
	}
	db.mu.Unlock()

	if err := fn(fakePosts{db}, fakeTags{db}); err != nil {
		db.mu.Lock()
		db.posts, db.tags, db.links = posts, tags, links
		db.mu.Unlock()
		return err
	}
	return nil
}

// --- posts ---

type fakePosts struct{ db *memDB }

func (f fakePosts) FindByID(id uuid.UUID) (*models.Post, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.posts[id]
	if !ok {
		return nil, errs.NotFound("post")
	}
	cp := *p
	return &cp, nil
}

func (f fakePosts) Create(p *models.Post) (*models.Post, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	row := *p
	row.ID = uuid.New()
	row.CreatedAt = f.db.tick()
	row.UpdatedAt = row.CreatedAt
	f.db.posts[row.ID] = &row
	cp := row
	return &cp, nil
}

func (f fakePosts) Update(p *models.Post) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	row, ok := f.db.posts[p.ID]
	if !ok {
		return errs.NotFound("post")
	}
	author := row.AuthorID
	*row = *p
	row.AuthorID = author
	row.Tags, row.Category = nil, nil
	row.UpdatedAt = f.db.tick()
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (f fakePosts) Delete(id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.posts[id]; !ok {
		return errs.NotFound("post")
	}
	delete(f.db.posts, id)
	delete(f.db.links, id)
	for cid, c := range f.db.comments {
		if c.PostID == id {
			delete(f.db.comments, cid)
		}
	}
	return nil
}

func (f fakePosts) filter(keep func(*models.Post) bool) []models.Post {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Post
	for _, p := range f.db.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f fakePosts) List() ([]models.Post, error) {
	return f.filter(func(*models.Post) bool { return true }), nil
}

func (f fakePosts) ListByCategory(categoryID *uuid.UUID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool {
		if categoryID == nil {
			return p.CategoryID == nil
		}
		return p.CategoryID != nil && *p.CategoryID == *categoryID
	}), nil
}

func (f fakePosts) ListByTag(tagID uuid.UUID) ([]models.Post, error) {
	return f.filter(func(p *models.Post) bool { return f.db.links[p.ID][tagID] }), nil
}

func (f fakePosts) Search(q string) ([]models.Post, error) {
	q = strings.ToLower(q)
	return f.filter(func(p *models.Post) bool {
		if strings.Contains(strings.ToLower(p.Title), q) {
			return true
		}
		for tid := range f.db.links[p.ID] {
			if strings.Contains(strings.ToLower(f.db.tags[tid].Name), q) {
				return true
			}
		}
		return false
	}), nil
}

func (f fakePosts) CountUncategorized() (int, error) {
	posts, _ := f.ListByCategory(nil)
	return len(posts), nil
}

func (f fakePosts) ClearTags(postID uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.links, postID)
	return nil
}

func (f fakePosts) AttachTag(postID, tagID uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.attachErr != nil {
		return f.db.attachErr
	}
	if f.db.links[postID] == nil {
		f.db.links[postID] = map[uuid.UUID]bool{}
	}
	f.db.links[postID][tagID] = true
	return nil
}

func (f fakePosts) TagsFor(postID uuid.UUID) ([]models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Tag
	for tid := range f.db.links[postID] {
		out = append(out, *f.db.tags[tid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakePosts) TagsForPosts(postIDs []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	out := make(map[uuid.UUID][]models.Tag, len(postIDs))
	for _, id := range postIDs {
		tags, _ := f.TagsFor(id)
		if len(tags) > 0 {
			out[id] = tags
		}
	}
	return out, nil
}

// --- tags ---

type fakeTags struct{ db *memDB }

func (f fakeTags) find(match func(*models.Tag) bool) (*models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, t := range f.db.tags {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errs.NotFound("tag")
}

func (f fakeTags) FindByName(name string) (*models.Tag, error) {
	return f.find(func(t *models.Tag) bool { return t.Name == name })
}

func (f fakeTags) FindBySlug(slug string) (*models.Tag, error) {
	return f.find(func(t *models.Tag) bool { return t.Slug == slug })
}

func (f fakeTags) Create(t *models.Tag) (*models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.tags {
		if existing.Name == t.Name || existing.Slug == t.Slug {
			return nil, fmt.Errorf("create tag %q: %w", t.Name, errs.ErrConflict)
		}
	}
	row := &models.Tag{ID: uuid.New(), Name: t.Name, Slug: t.Slug, CreatedAt: f.db.tick()}
	f.db.tags[row.ID] = row
	cp := *row
	return &cp, nil
}

func (f fakeTags) List() ([]models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Tag
	for _, t := range f.db.tags {
		cp := *t
		for _, tags := range f.db.links {
			if tags[t.ID] {
				cp.PostCount++
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- categories ---

type fakeCategories struct{ db *memDB }

func (f fakeCategories) List() ([]models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Category
	for _, c := range f.db.categories {
		cp := *c
		for _, p := range f.db.posts {
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				cp.PostCount++
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeCategories) FindByID(id uuid.UUID) (*models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.categories[id]
	if !ok {
		return nil, errs.NotFound("category")
	}
	cp := *c
	return &cp, nil
}

func (f fakeCategories) FindBySlug(slug string) (*models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.NotFound("category")
}

func (f fakeCategories) Create(c *models.Category) (*models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.categories {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return nil, fmt.Errorf("create category %q: %w", c.Name, errs.ErrConflict)
		}
	}
	row := &models.Category{ID: uuid.New(), Name: c.Name, Slug: c.Slug, CreatedAt: f.db.tick()}
	f.db.categories[row.ID] = row
	cp := *row
	return &cp, nil
}

func (f fakeCategories) Delete(id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.categories[id]; !ok {
		return errs.NotFound("category")
	}
	delete(f.db.categories, id)
	for _, p := range f.db.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

// --- comments ---

type fakeComments struct{ db *memDB }

func (f fakeComments) Create(c *models.Comment) (*models.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = f.db.tick()
	row.ModifiedAt = row.CreatedAt
	f.db.comments[row.ID] = &row
	cp := row
	return &cp, nil
}

func (f fakeComments) FindByID(id uuid.UUID) (*models.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.comments[id]
	if !ok {
		return nil, errs.NotFound("comment")
	}
	cp := *c
	return &cp, nil
}

func (f fakeComments) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Comment
	for _, c := range f.db.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeComments) Update(c *models.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	row, ok := f.db.comments[c.ID]
	if !ok {
		return errs.NotFound("comment")
	}
	row.Content = c.Content
	row.ModifiedAt = f.db.tick()
	c.ModifiedAt = row.ModifiedAt
	return nil
}

func (f fakeComments) Delete(id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.comments[id]; !ok {
		return errs.NotFound("comment")
	}
	delete(f.db.comments, id)
	return nil
}

// --- collaborators ---

// memFiles is an in-memory FileStore.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}}
}

func (m *memFiles) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memFiles) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memFiles) FileURL(key string) string {
	return "https://files.test/" + key
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// recorder counts cache invalidations and logged events.
type recorder struct {
	mu            sync.Mutex
	invalidations int
	events        []string
}

func (r *recorder) InvalidateAll(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidations++
}

func (r *recorder) Log(entityType string, _ uuid.UUID, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, entityType+":"+action)
}
