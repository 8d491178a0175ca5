// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown renders post bodies and comments from Markdown to HTML
// using goldmark. Post bodies may embed raw HTML written by staff; comment
// bodies come from any reader and are rendered with raw HTML omitted.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

func extensions() goldmark.Option {
	return goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	)
}

// trusted renders staff-authored post bodies, raw HTML included.
var trusted = goldmark.New(
	extensions(),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// untrusted renders reader comments.
var untrusted = goldmark.New(extensions())

// ToHTML converts a post body into HTML. Raw HTML embedded in the
// Markdown is passed through unchanged.
func ToHTML(source string) (string, error) {
	return convert(trusted, source)
}

// CommentToHTML converts a comment into HTML, dropping any raw HTML.
func CommentToHTML(source string) (string, error) {
	return convert(untrusted, source)
}

func convert(md goldmark.Markdown, source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
