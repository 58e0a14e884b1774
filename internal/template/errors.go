package template

import "errors"

// Compilation errors.
var (
	ErrInvalidTemplateSyntax = errors.New("invalid template syntax")
	ErrDuplicateVariableName = errors.New("duplicate variable name")
)
