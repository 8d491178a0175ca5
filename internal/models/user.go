// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the blog.
type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleStaff     Role = "staff"
	RoleReader    Role = "reader"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperuser, RoleStaff, RoleReader:
		return true
	}
	return false
}

// User represents a blog account with authentication and 2FA fields.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsElevated returns true for staff and superusers, the only roles allowed
// to write posts.
func (u *User) IsElevated() bool {
	return u.Role == RoleStaff || u.Role == RoleSuperuser
}

// Needs2FASetup returns true if an elevated user has not completed 2FA
// enrollment. Readers never need 2FA.
func (u *User) Needs2FASetup() bool {
	return u.IsElevated() && !u.TOTPEnabled
}

// Principal is the acting identity of a request. A nil *Principal is an
// anonymous visitor.
type Principal struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
}

// IsElevated returns true if the principal is staff or superuser.
func (p *Principal) IsElevated() bool {
	if p == nil {
		return false
	}
	return p.Role == RoleStaff || p.Role == RoleSuperuser
}
