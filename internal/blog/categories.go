// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/guard"
	"tagpress/internal/models"
	"tagpress/internal/slug"
	"tagpress/internal/store"
)

// fallbackCategorySlug is used when a category name has no letters or digits.
const fallbackCategorySlug = "category"

// CreateCategory adds a category. An empty categorySlug is derived from
// the name. Duplicate names or slugs yield errs.ErrConflict.
func (s *Service) CreateCategory(ctx context.Context, p *models.Principal, name, categorySlug string) (*models.Category, error) {
	if err := guard.AuthorizeCreation(p); err != nil {
		return nil, err
	}
	if msg := validateCategory(name, categorySlug); msg != "" {
		return nil, errs.Invalid(msg)
	}

	name = strings.TrimSpace(name)
	source := categorySlug
	if strings.TrimSpace(source) == "" {
		source = name
	}
	sl := slug.OrFallback(slug.Generate(source), fallbackCategorySlug)
	if sl == models.NoCategorySlug {
		return nil, errs.Invalid("That slug is reserved.")
	}

	c, err := s.categories.Create(&models.Category{Name: name, Slug: sl})
	if err != nil {
		return nil, err
	}

	slog.Info("category created", "category_id", c.ID, "slug", c.Slug)
	s.invalidate(ctx, store.EntityCategory, c.ID, "create")
	return c, nil
}

// DeleteCategory removes a category. Its posts become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := guard.AuthorizeCreation(p); err != nil {
		return err
	}
	if err := s.categories.Delete(id); err != nil {
		return err
	}

	slog.Info("category deleted", "category_id", id)
	s.invalidate(ctx, store.EntityCategory, id, "delete")
	return nil
}
