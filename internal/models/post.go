// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. AuthorID becomes nil when the author account is
// deleted; CategoryID becomes nil when its category is deleted.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	HookText     string     `json:"hook_text"`
	Content      string     `json:"content"`
	HeadImageKey *string    `json:"head_image_key,omitempty"`
	FileKey      *string    `json:"file_key,omitempty"`
	FileName     *string    `json:"file_name,omitempty"`
	AuthorID     *uuid.UUID `json:"author_id"`
	CategoryID   *uuid.UUID `json:"category_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Populated by the service layer, not scanned from the posts table.
	Tags     []Tag     `json:"tags"`
	Category *Category `json:"category,omitempty"`
}

// Author returns the author reference used for mutation rights.
func (p *Post) Author() *uuid.UUID {
	return p.AuthorID
}

// FileExt returns the lower-cased extension of the attached file without
// the leading dot, or "" when there is no attachment.
func (p *Post) FileExt() string {
	if p.FileName == nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(*p.FileName), "."))
}
