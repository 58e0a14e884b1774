package extraction

import (
	"errors"

	"github.com/fyrsmithlabs/textparser/internal/template"
)

// ErrMatchTimeout is returned when a search exceeds the pattern's match timeout.
var ErrMatchTimeout = errors.New("template match timed out")

// Capture is one named group and the text it captured.
type Capture struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Captures holds named captures in the order their groups appear in the
// pattern.
type Captures []Capture

// Names returns the capture names in order.
func (c Captures) Names() []string {
	names := make([]string, 0, len(c))
	for _, capture := range c {
		names = append(names, capture.Name)
	}
	return names
}

// Lookup returns the value captured for name.
func (c Captures) Lookup(name string) (string, bool) {
	for _, capture := range c {
		if capture.Name == name {
			return capture.Value, true
		}
	}
	return "", false
}

// Extractor applies one compiled template to a text.
type Extractor interface {
	// Extract runs a single search. ok is false when the template does not
	// match or captures no named group.
	Extract(text string, compiled *template.Compiled) (captures Captures, ok bool, err error)
}
