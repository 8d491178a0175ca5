// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package guard holds the permission checks run at the start of every
// mutating blog operation. The checks are plain functions so callers can
// compose them in order.
package guard

import (
	"fmt"

	"github.com/google/uuid"

	"tagpress/internal/errs"
	"tagpress/internal/models"
)

// Owned is a resource with a (possibly deleted) author.
type Owned interface {
	Author() *uuid.UUID
}

// AuthorizeCreation allows only authenticated staff and superusers through.
func AuthorizeCreation(p *models.Principal) error {
	if p == nil || !p.Authenticated {
		return fmt.Errorf("create: %w", errs.ErrUnauthorized)
	}
	if !p.IsElevated() {
		return fmt.Errorf("create requires staff role: %w", errs.ErrUnauthorized)
	}
	return nil
}

// AuthorizeMutation allows only the resource's author through. Resources
// whose author no longer exists cannot be changed by anyone.
func AuthorizeMutation(p *models.Principal, res Owned) error {
	if p == nil || !p.Authenticated {
		return fmt.Errorf("modify: %w", errs.ErrUnauthorized)
	}
	author := res.Author()
	if author == nil || *author != p.ID {
		return fmt.Errorf("modify: not the author: %w", errs.ErrUnauthorized)
	}
	return nil
}

// RequireAuthenticated allows any signed-in principal through.
func RequireAuthenticated(p *models.Principal) error {
	if p == nil || !p.Authenticated {
		return fmt.Errorf("sign in required: %w", errs.ErrUnauthorized)
	}
	return nil
}
