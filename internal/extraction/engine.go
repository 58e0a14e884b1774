package extraction

import (
	"fmt"
	"strconv"

	"github.com/fyrsmithlabs/textparser/internal/template"
)

// Engine implements Extractor on top of regexp2 patterns.
type Engine struct{}

// NewEngine creates an extraction engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Extract runs one search of compiled against text and returns the named
// groups that participated.
func (e *Engine) Extract(text string, compiled *template.Compiled) (Captures, bool, error) {
	if compiled == nil || compiled.Regexp() == nil {
		return nil, false, fmt.Errorf("extract: nil template")
	}

	match, err := compiled.Regexp().FindStringMatch(text)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMatchTimeout, err)
	}
	if match == nil {
		return nil, false, nil
	}

	var captures Captures
	for _, group := range match.Groups() {
		if isNumbered(group.Name) {
			continue
		}
		// Groups that did not take part in the match have no captures.
		if len(group.Captures) == 0 {
			continue
		}
		captures = append(captures, Capture{
			Name:  group.Name,
			Value: group.String(),
		})
	}

	if len(captures) == 0 {
		return nil, false, nil
	}
	return captures, true, nil
}

// isNumbered reports whether a group name is a positional index.
func isNumbered(name string) bool {
	_, err := strconv.Atoi(name)
	return err == nil
}

// Ensure Engine implements Extractor.
var _ Extractor = (*Engine)(nil)
