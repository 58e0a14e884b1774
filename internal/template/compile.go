package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// quotedChars is the PCRE quoting set, including "/" so compiled patterns
// stay byte-compatible with libraries written for slash-delimited engines.
const quotedChars = `.\+*?[^]$(){}=!<>|:-#/`

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// {%name:subpattern%} after quoting. The name keeps the backslash that
	// quoted the colon; unescapeGroup removes it.
	patternPlaceholder = regexp.MustCompile(`\\\{%([^%]+?):(.*?)%\\\}`)

	// A named group produced by the pattern placeholder pass, up to and
	// including its first closing parenthesis.
	preparedGroup = regexp.MustCompile(`\(\?[^)]*.`)

	// {%name%} after quoting.
	wildcardPlaceholder = regexp.MustCompile(`\\\{%(.*?)%\\\}`)
)

// Compiled is the regular expression derived from one template text.
type Compiled struct {
	// Pattern is the regular expression source.
	Pattern string
	// Variables lists the placeholder names in order of appearance.
	Variables []string

	re *regexp2.Regexp
}

// Regexp returns the compiled expression.
func (c *Compiled) Regexp() *regexp2.Regexp {
	return c.re
}

// NormalizeWhitespace collapses every whitespace run to a single space and
// trims both ends. Templates and input texts go through the same function so
// literal segments line up.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Compile turns raw template text into a compiled pattern without caching
// and without a match timeout.
func Compile(raw string) (*Compiled, error) {
	return compile(raw, 0)
}

// Translate returns the regular expression source for raw and the ordered
// placeholder names without compiling the expression.
func Translate(raw string) (string, []string, error) {
	text := NormalizeWhitespace(raw)
	if err := checkDelimiters(text); err != nil {
		return "", nil, err
	}

	var names []string
	quoted := quote(text)

	quoted = replaceSubmatches(patternPlaceholder, quoted, func(m []string) string {
		names = append(names, unescapeGroup(m[1]))
		return "(?<" + m[1] + ">" + m[2] + ")"
	})
	quoted = preparedGroup.ReplaceAllStringFunc(quoted, unescapeGroup)
	pattern := replaceSubmatches(wildcardPlaceholder, quoted, func(m []string) string {
		names = append(names, m[1])
		return "(?<" + m[1] + ">.*)"
	})

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return "", nil, fmt.Errorf("%w: %q", ErrDuplicateVariableName, name)
		}
		seen[name] = struct{}{}
	}

	sort.SliceStable(names, func(i, j int) bool {
		return groupOffset(pattern, names[i]) < groupOffset(pattern, names[j])
	})

	return pattern, names, nil
}

func compile(raw string, timeout time.Duration) (*Compiled, error) {
	pattern, names, err := Translate(raw)
	if err != nil {
		return nil, err
	}

	re, err := regexp2.Compile(pattern, regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplateSyntax, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	return &Compiled{
		Pattern:   pattern,
		Variables: names,
		re:        re,
	}, nil
}

// quote escapes every regex metacharacter in s.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 0:
			b.WriteString(`\000`)
		case strings.IndexByte(quotedChars, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// unescapeGroup drops orphan backslashes (not adjacent to another backslash)
// and then collapses triple backslashes into one.
func unescapeGroup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			prev := i > 0 && s[i-1] == '\\'
			next := i+1 < len(s) && s[i+1] == '\\'
			if !prev && !next {
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return strings.ReplaceAll(b.String(), `\\\`, `\`)
}

// checkDelimiters rejects placeholders that are never closed, closed without
// being opened, or opened inside another placeholder.
func checkDelimiters(text string) error {
	open := -1
	for i := 0; i+1 < len(text); {
		switch {
		case text[i] == '{' && text[i+1] == '%':
			if open >= 0 {
				return fmt.Errorf("%w: placeholder opened at offset %d inside placeholder opened at offset %d",
					ErrInvalidTemplateSyntax, i, open)
			}
			open = i
			i += 2
		case text[i] == '%' && text[i+1] == '}':
			if open < 0 {
				return fmt.Errorf("%w: unmatched %q at offset %d", ErrInvalidTemplateSyntax, "%}", i)
			}
			open = -1
			i += 2
		default:
			i++
		}
	}
	if open >= 0 {
		return fmt.Errorf("%w: placeholder opened at offset %d is never closed", ErrInvalidTemplateSyntax, open)
	}
	return nil
}

func replaceSubmatches(re *regexp.Regexp, s string, fn func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func groupOffset(pattern, name string) int {
	idx := strings.Index(pattern, "(?<"+name+">")
	if idx < 0 {
		return len(pattern)
	}
	return idx
}
