// Package sanitize cleans values captured by templates before they are
// handed to callers.
//
// The only normalization applied is markup removal and trimming of the
// surrounding whitespace. Inner whitespace, punctuation, casing and character
// entities are kept exactly as captured.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup tags, comments and doctypes from s. Text between
// tags is copied verbatim; entities such as &amp; are not decoded. Elements
// HTML treats as raw text (title, textarea, script, style, plaintext) are
// tokenized like any other element, so tags inside them are removed too.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF; the tokenizer never fails on a strings.Reader otherwise.
			return b.String()
		case html.StartTagToken:
			z.NextIsNotRawText()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// Value strips markup from a captured value and trims surrounding whitespace.
//
// Examples:
//
//	"  <b>Paris</b>  "     -> "Paris"
//	"11 - 10 - 2014 "      -> "11 - 10 - 2014"
//	"a &amp; b <br/>"      -> "a &amp; b"
func Value(s string) string {
	return strings.TrimSpace(StripTags(s))
}
