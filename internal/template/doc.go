// Package template compiles human-authored sample documents into regular
// expressions.
//
// A template is ordinary text with placeholders marking the variable parts:
//
//	Order #{%id%} shipped to {%city%} on {%date:[0-9]{4}-[0-9]{2}-[0-9]{2}%}
//
// Two placeholder forms are supported:
//   - {%name%} captures anything (greedy, dot matches newline)
//   - {%name:subpattern%} captures what subpattern matches; the subpattern is
//     taken verbatim as a regular expression fragment
//
// # Compilation
//
// The template is whitespace-normalized, every regex metacharacter is quoted
// as literal text, and then the quoted placeholders are rewritten into named
// groups. Quoting inside a subpattern is undone selectively: a lone backslash
// is dropped and a run of three backslashes collapses to one. A subpattern
// written as \. therefore survives as \. while \d ends up as \\d (a literal
// backslash followed by d). Existing template libraries depend on this, so it
// is kept as is.
//
// Patterns are compiled with github.com/dlclark/regexp2 in single-line mode
// and evaluated as a search, not an anchored match.
//
// # Caching
//
// Compile is a pure function of the raw text. Compiler memoizes it in an LRU
// keyed by the SHA-256 of the raw text, so reloading an unchanged template
// library does not recompile anything.
package template
