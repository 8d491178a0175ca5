// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Letters from any script are kept, so Korean, Cyrillic or accented names
// produce readable slugs instead of empty strings.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026", "새 태그" → "새-태그".
//
// The input is NFKC-normalised and lower-cased. Letters, numbers,
// underscores and hyphens are kept; whitespace and hyphen runs collapse
// into a single hyphen; everything else is dropped. Leading and trailing
// hyphens and underscores are trimmed.
func Generate(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}

// Unique returns base for attempt 1 and "base-n" for later attempts. It is
// used to disambiguate slugs that collide with an existing row.
func Unique(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}

// OrFallback returns s, or fallback when s is empty. A name made only of
// punctuation slugifies to "", and stored slugs must never be empty.
func OrFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Codepoints spells the first limit non-space runes of s in lower-case hex,
// joined by hyphens: "🎉 !" gives "1f389-21". It names things whose text
// slugifies to nothing.
func Codepoints(s string, limit int) string {
	parts := make([]string, 0, limit)
	for _, r := range s {
		if len(parts) == limit {
			break
		}
		if unicode.IsSpace(r) {
			continue
		}
		parts = append(parts, strconv.FormatInt(int64(r), 16))
	}
	return strings.Join(parts, "-")
}
