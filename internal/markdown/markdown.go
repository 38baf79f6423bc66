// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post content into HTML using goldmark and
// derives plain text from markup with bluemonday. Raw HTML embedded in the
// source is allowed through the parser and then sanitized, so rendered
// output is safe to embed in any page.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Footnote,
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(),
	),
)

var (
	// ugc keeps user formatting plus the class names emitted by the highlighter.
	ugc = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("pre", "code", "span", "div")
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		return p
	}()

	strict = bluemonday.StrictPolicy()

	// tagPattern matches a complete element, comment or doctype token.
	tagPattern = regexp.MustCompile(`<[a-zA-Z/!][^<>]*>`)
)

// ToHTML converts Markdown source into sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return ugc.Sanitize(buf.String()), nil
}

// StripTags removes every complete HTML element from s and returns the
// remaining text with entities decoded. A "<" that does not open a complete
// tag is kept as text.
func StripTags(s string) string {
	return html.UnescapeString(strict.Sanitize(escapeStrayBrackets(s)))
}

// escapeStrayBrackets escapes every "<" outside a complete tag so the HTML
// tokenizer reads it as text.
func escapeStrayBrackets(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(s, -1) {
		b.WriteString(strings.ReplaceAll(s[last:loc[0]], "<", "&lt;"))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}

// Excerpt derives a summary from content: the first limit characters of
// the tag-stripped text, followed by "..." when the text was longer.
func Excerpt(content string, limit int) string {
	plain := strings.TrimSpace(StripTags(content))
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	return string(runes[:limit]) + "..."
}
