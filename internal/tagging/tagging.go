// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tagging turns the free-text tag field of the post form into the
// post's tag set. Commas and semicolons both separate tags; missing tags
// are created on demand with a Unicode-preserving slug.
package tagging

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
	"tagpress/internal/slug"
)

const (
	// numberedSlugAttempts bounds the "-2", "-3", ... suffixes tried when a
	// new tag's slug collides with a differently named tag. Later attempts
	// use a random suffix.
	numberedSlugAttempts = 8
	randomSlugAttempts   = 4

	// fallbackPrefix starts the slug of a tag whose name has no letters or
	// digits, such as an emoji. The name's codepoints follow it.
	fallbackPrefix   = "tag"
	fallbackMaxRunes = 8
)

// TagRepository looks up and creates tags. Create must return an error
// wrapping errs.ErrConflict when a unique name or slug already exists, and
// FindByName one wrapping errs.ErrNotFound when no tag matches.
type TagRepository interface {
	FindByName(name string) (*models.Tag, error)
	Create(t *models.Tag) (*models.Tag, error)
}

// PostTagger maintains a post's tag links. AttachTag must be idempotent.
type PostTagger interface {
	ClearTags(postID uuid.UUID) error
	AttachTag(postID, tagID uuid.UUID) error
}

// Normalizer resolves raw tag strings against the tag store.
type Normalizer struct {
	tags  TagRepository
	posts PostTagger
}

// New returns a Normalizer backed by the given repositories.
func New(tags TagRepository, posts PostTagger) *Normalizer {
	return &Normalizer{tags: tags, posts: posts}
}

// Parse splits a raw tag field into trimmed, non-empty, distinct tag
// names in first-seen order. "a, b; c" yields [a b c].
func Parse(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", ";")

	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ";") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Apply replaces the tag set of a post with the tags named in raw and
// returns the attached tags in input order. An empty or blank raw string
// just clears the set. New tag rows may be created as a side effect.
func (n *Normalizer) Apply(raw string, postID uuid.UUID) ([]models.Tag, error) {
	if err := n.posts.ClearTags(postID); err != nil {
		return nil, fmt.Errorf("apply tags: %w", err)
	}

	names := Parse(raw)
	attached := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := n.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("apply tags: %w", err)
		}
		if err := n.posts.AttachTag(postID, tag.ID); err != nil {
			return nil, fmt.Errorf("apply tags: %w", err)
		}
		attached = append(attached, *tag)
	}
	return attached, nil
}

// Resolve returns the tag named name, creating it if necessary.
//
// A create that loses a race on the unique indexes is retried after a
// fresh lookup: if the name now exists the other writer's row is used,
// otherwise the collision was on the slug and the next candidate slug is
// tried. ErrConflict is never returned.
func (n *Normalizer) Resolve(name string) (*models.Tag, error) {
	base := baseSlug(name)

	for attempt := 1; attempt <= numberedSlugAttempts+randomSlugAttempts; attempt++ {
		tag, err := n.tags.FindByName(name)
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}

		candidate := slug.Unique(base, attempt)
		if attempt > numberedSlugAttempts {
			candidate = base + "-" + uuid.NewString()[:8]
		}

		tag, err = n.tags.Create(&models.Tag{Name: name, Slug: candidate})
		if err == nil {
			slog.Debug("tag created", "name", tag.Name, "slug", tag.Slug)
			return tag, nil
		}
		if !errors.Is(err, errs.ErrConflict) {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		slog.Debug("tag create conflict, retrying", "name", name, "attempt", attempt)
	}

	return nil, fmt.Errorf("resolve tag %q: no free slug after %d attempts", name, numberedSlugAttempts+randomSlugAttempts)
}

// baseSlug is the first slug tried for a new tag. Names without letters or
// digits get "tag-" followed by their codepoints, so "🎉" and "🚀" do not
// compete for one slug.
func baseSlug(name string) string {
	if s := slug.Generate(name); s != "" {
		return s
	}
	if cp := slug.Codepoints(name, fallbackMaxRunes); cp != "" {
		return fallbackPrefix + "-" + cp
	}
	return fallbackPrefix
}
