// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for post, comment and category fields.
const (
	maxTitleLen        = 30
	maxHookTextLen     = 100
	maxContentLen      = 100_000
	maxTagsLen         = 500
	maxCommentLen      = 5_000
	maxCategoryNameLen = 50
	maxCategorySlugLen = 200
	maxSearchLen       = 100
)

const invalidEncoding = "Text must be valid UTF-8."

// validUTF8 reports whether every field is valid UTF-8.
func validUTF8(fields ...string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return false
		}
	}
	return true
}

// validatePost checks post form inputs and returns the first error found.
func validatePost(in PostInput) string {
	if !validUTF8(in.Title, in.HookText, in.Content, in.TagsStr) {
		return invalidEncoding
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 30 characters)."
	}
	if utf8.RuneCountInString(in.HookText) > maxHookTextLen {
		return "Hook text is too long (max 100 characters)."
	}
	if strings.TrimSpace(in.Content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(in.Content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(in.TagsStr) > maxTagsLen {
		return "Tags are too long (max 500 characters)."
	}
	return ""
}

// validateComment checks a comment body.
func validateComment(content string) string {
	if !validUTF8(content) {
		return invalidEncoding
	}
	if strings.TrimSpace(content) == "" {
		return "Comment is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}

// validateCategory checks category form inputs.
func validateCategory(name, slug string) string {
	if !validUTF8(name, slug) {
		return invalidEncoding
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 50 characters)."
	}
	if utf8.RuneCountInString(slug) > maxCategorySlugLen {
		return "Category slug is too long (max 200 characters)."
	}
	return ""
}

// validateSearch checks a search query.
func validateSearch(q string) string {
	if !validUTF8(q) {
		return invalidEncoding
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return "Search query is required."
	}
	if utf8.RuneCountInString(q) > maxSearchLen {
		return "Search query is too long (max 100 characters)."
	}
	return ""
}
