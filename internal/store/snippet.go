package store

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// snippet returns up to width bytes of body around the first
// case-insensitive occurrence of query, or the head of body.
func snippet(body, query string, width int) string {
	if len(body) <= width {
		return strings.TrimSpace(body)
	}
	start := 0
	if i := indexFold(body, query); i > 0 {
		start = min(len(body), max(0, i-width/4))
	}
	end := min(len(body), start+width)
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	out := strings.TrimSpace(body[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(body) {
		out += "..."
	}
	return out
}

// indexFold returns the byte offset in body of the first case-insensitive
// match of query, or -1. The offset indexes body itself, never a
// case-mapped copy of it.
func indexFold(body, query string) int {
	if query == "" {
		return -1
	}
	loc := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query)).FindStringIndex(body)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
