// Package selector decides which templates to try against a text, and in
// what order.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/textparser/internal/similarity"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

// Mode selects the template selection strategy.
type Mode int

const (
	// ModeEnumerate tries every template in reverse-lexicographic ID order;
	// the first template that matches wins.
	ModeEnumerate Mode = iota
	// ModeBestFit tries only the template whose raw text is most similar to
	// the input.
	ModeBestFit
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeEnumerate:
		return "enumerate"
	case ModeBestFit:
		return "best-fit"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. "first-match" is accepted as an alias of
// "enumerate".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "enumerate", "first-match":
		return ModeEnumerate, nil
	case "best-fit", "bestfit":
		return ModeBestFit, nil
	default:
		return ModeEnumerate, fmt.Errorf("unknown selection mode %q (want enumerate or best-fit)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Ordered returns a copy of templates sorted by ID in reverse-lexicographic
// order. The order does not depend on how the templates were listed.
func Ordered(templates []*template.Template) []*template.Template {
	ordered := make([]*template.Template, len(templates))
	copy(ordered, templates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID > ordered[j].ID
	})
	return ordered
}

// Select returns the templates to attempt for text, in attempt order.
// text is expected to be whitespace-normalized already.
func Select(text string, templates []*template.Template, mode Mode) []*template.Template {
	ordered := Ordered(templates)
	if mode != ModeBestFit || len(ordered) == 0 {
		return ordered
	}

	best := ordered[0]
	bestScore := -1.0
	for _, t := range ordered {
		score := similarity.Percent(text, t.Raw)
		if score > bestScore {
			best = t
			bestScore = score
		}
	}

	return []*template.Template{best}
}
