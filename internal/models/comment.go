// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's reply to a post. It is deleted together with its
// post or its author.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	// Joined from users for display.
	AuthorName string `json:"author_name,omitempty"`
}

// Author returns the author reference used for mutation rights.
func (c *Comment) Author() *uuid.UUID {
	return &c.AuthorID
}

// IsEdited reports whether the comment was modified after creation.
func (c *Comment) IsEdited() bool {
	return c.ModifiedAt.Sub(c.CreatedAt) > time.Second
}
