// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"tagpress/internal/slug"
)

// SeedEmail is the login of the development superuser created by Seed.
const SeedEmail = "admin@tagpress.local"

// seedTags are attached to the welcome post.
var seedTags = []string{"hello", "장고"}

// Seed populates the database with initial development data: a superuser,
// one category and a tagged welcome post. It is a no-op once any user
// exists. The superuser will be prompted to set up 2FA on first login.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var adminID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, 'superuser', FALSE)
		RETURNING id
	`, SeedEmail, string(hash), "Admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var categoryID string
	err = tx.QueryRow(`
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Programming", slug.Generate("Programming")).Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	var postID string
	err = tx.QueryRow(`
		INSERT INTO posts (title, hook_text, content, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "Hello, tagpress", "The first post.",
		"# Welcome\n\nThis post was created by the development seed.",
		adminID, categoryID,
	).Scan(&postID)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	for _, name := range seedTags {
		var tagID string
		err := tx.QueryRow(`
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name, slug.Generate(name)).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("seed insert tag %q: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID); err != nil {
			return fmt.Errorf("seed attach tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default superuser",
		"email", SeedEmail,
		"password", "admin",
	)

	return nil
}
