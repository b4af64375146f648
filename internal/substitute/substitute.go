// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package substitute renders template content by replacing {{name}}
// placeholders with user-entered values. Placeholders are found with a
// literal left-to-right scan; no pattern is ever built from a variable name
// and substituted values are never scanned again.
package substitute

import "strings"

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// token is one placeholder occurrence inside a content string.
type token struct {
	start int // index of the opening "{{"
	end   int // index just past the closing "}}"
	name  string
}

// scan returns every well-formed placeholder in content, left to right and
// non-overlapping. Extra leading braces are literal text, as is an opening
// delimiter followed by another one before any closing one. An unterminated
// "{{" ends the scan.
func scan(content string) []token {
	var tokens []token
	pos := 0
	for pos < len(content) {
		open := strings.Index(content[pos:], openDelim)
		if open < 0 {
			break
		}
		open += pos
		nameStart := open + len(openDelim)
		// In a run of three or more braces the placeholder opens at the
		// last two: "{{{x}}}" holds "{{x}}".
		for nameStart < len(content) && content[nameStart] == '{' {
			open++
			nameStart++
		}

		closeIdx := strings.Index(content[nameStart:], closeDelim)
		if closeIdx < 0 {
			break
		}
		closeIdx += nameStart

		// A nearer "{{" means the first one was literal; restart there.
		if next := strings.Index(content[nameStart:closeIdx], openDelim); next >= 0 {
			pos = nameStart + next
			continue
		}

		end := closeIdx + len(closeDelim)
		tokens = append(tokens, token{start: open, end: end, name: content[nameStart:closeIdx]})
		pos = end
	}
	return tokens
}

// Render replaces every {{name}} in content with values[name]. A placeholder
// whose value is absent or empty is left as-is so that an unfinished block
// shows which fields are still open. Render never fails and never mutates
// its inputs.
func Render(content string, values map[string]string) string {
	tokens := scan(content)
	if len(tokens) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, t := range tokens {
		b.WriteString(content[last:t.start])
		if v := values[t.name]; v != "" {
			b.WriteString(v)
		} else {
			b.WriteString(content[t.start:t.end])
		}
		last = t.end
	}
	b.WriteString(content[last:])
	return b.String()
}

// Placeholders returns the distinct placeholder names referenced by content,
// in order of first occurrence.
func Placeholders(content string) []string {
	tokens := scan(content)
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tokens))
	names := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t.name] {
			continue
		}
		seen[t.name] = true
		names = append(names, t.name)
	}
	return names
}

// Unresolved returns the distinct placeholder names in content that values
// leaves unfilled (absent or empty), in order of first occurrence.
func Unresolved(content string, values map[string]string) []string {
	var open []string
	for _, name := range Placeholders(content) {
		if values[name] == "" {
			open = append(open, name)
		}
	}
	return open
}
