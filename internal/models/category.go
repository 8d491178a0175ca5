// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// NoCategorySlug is the route sentinel for posts without a category. It is
// never stored as a category row.
const NoCategorySlug = "no_category"

// Category groups posts. Posts can have at most one category assigned.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by CategoryStore.List.
	PostCount int `json:"post_count"`
}
