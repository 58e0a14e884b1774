package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		pattern   string
		variables []string
	}{
		{
			name:      "wildcard placeholder",
			raw:       "Order #{%id%} shipped",
			pattern:   `Order \#(?<id>.*) shipped`,
			variables: []string{"id"},
		},
		{
			name:      "pattern placeholder",
			raw:       "{%date:[0-9]+%}",
			pattern:   `(?<date>[0-9]+)`,
			variables: []string{"date"},
		},
		{
			name:      "escaped dot in subpattern survives",
			raw:       `Total: {%price:[0-9]+\.[0-9]{2}%} EUR`,
			pattern:   `Total\: (?<price>[0-9]+\.[0-9]{2}) EUR`,
			variables: []string{"price"},
		},
		{
			name:      "class shorthand keeps doubled backslash",
			raw:       `{%n:\d+%}`,
			pattern:   `(?<n>\\d+)`,
			variables: []string{"n"},
		},
		{
			name:      "alternation group inside subpattern",
			raw:       "Status: {%state:(open|closed)%}",
			pattern:   `Status\: (?<state>(open|closed))`,
			variables: []string{"state"},
		},
		{
			name:      "variables ordered by appearance",
			raw:       "{%a%} {%b:[0-9]+%} {%c%}",
			pattern:   `(?<a>.*) (?<b>[0-9]+) (?<c>.*)`,
			variables: []string{"a", "b", "c"},
		},
		{
			name:      "whitespace collapsed",
			raw:       "Hello   {%name%}\n\n\t!",
			pattern:   `Hello (?<name>.*) \!`,
			variables: []string{"name"},
		},
		{
			name:      "literal metacharacters quoted",
			raw:       "a.b*c? (x) [y] $z ^w |v| <u> =t! -s- /r/",
			pattern:   `a\.b\*c\? \(x\) \[y\] \$z \^w \|v\| \<u\> \=t\! \-s\- \/r\/`,
			variables: nil,
		},
		{
			name:      "empty template",
			raw:       "",
			pattern:   "",
			variables: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := Compile(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, compiled.Pattern)
			assert.Equal(t, tt.variables, compiled.Variables)
			assert.NotNil(t, compiled.Regexp())
		})
	}
}

func TestCompile_IsPure(t *testing.T) {
	raw := "Dear {%name%},\nyour order {%order:[A-Z]{2}[0-9]+%} ships {%when%}."

	first, err := Compile(raw)
	require.NoError(t, err)
	second, err := Compile(raw)
	require.NoError(t, err)

	assert.Equal(t, first.Pattern, second.Pattern)
	assert.Equal(t, first.Variables, second.Variables)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "unterminated placeholder", raw: "Hello {%name", wantErr: ErrInvalidTemplateSyntax},
		{name: "unopened placeholder", raw: "Hello name%}", wantErr: ErrInvalidTemplateSyntax},
		{name: "nested placeholder", raw: "{%a {%b%}%}", wantErr: ErrInvalidTemplateSyntax},
		{name: "name with space", raw: "{%first name%}", wantErr: ErrInvalidTemplateSyntax},
		{name: "empty name", raw: "{%%}", wantErr: ErrInvalidTemplateSyntax},
		{name: "broken subpattern", raw: "{%n:[0-9%}", wantErr: ErrInvalidTemplateSyntax},
		{name: "duplicate wildcard", raw: "{%a%} and {%a%}", wantErr: ErrDuplicateVariableName},
		{name: "duplicate across forms", raw: "{%a:[0-9]+%} and {%a%}", wantErr: ErrDuplicateVariableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompile_PatternMatchesAcrossLines(t *testing.T) {
	compiled, err := Compile("From: {%from%} Subject: {%subject%}")
	require.NoError(t, err)

	ok, err := compiled.Regexp().MatchString("header\nFrom: a@b.c Subject: line one\nline two")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a \t b\r\n\n c  "))
	assert.Equal(t, "", NormalizeWhitespace(" \n\t "))
}

func TestUnescapeGroup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `(?<a\>\[x\])`, want: `(?<a>[x])`},
		{in: `(?<a\>\\d)`, want: `(?<a>\\d)`},
		{in: `(?<a\>\\\.)`, want: `(?<a>\.)`},
		{in: `(?<a\>x)`, want: `(?<a>x)`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unescapeGroup(tt.in), tt.in)
	}
}

func TestCompiler_Cache(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)

	first, err := c.Compile("Invoice #{%id%} paid")
	require.NoError(t, err)
	second, err := c.Compile("Invoice #{%id%} paid")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.CacheLen())

	_, err = c.Compile("{%broken")
	require.Error(t, err)
	assert.Equal(t, 1, c.CacheLen(), "failed compilations are not cached")
}

func TestCompiler_NoCache(t *testing.T) {
	c, err := NewCompiler(WithCacheSize(0))
	require.NoError(t, err)

	first, err := c.Compile("{%x%}")
	require.NoError(t, err)
	second, err := c.Compile("{%x%}")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Pattern, second.Pattern)
	assert.Equal(t, 0, c.CacheLen())
}

func TestCompiler_Options(t *testing.T) {
	_, err := NewCompiler(WithCacheSize(-1))
	assert.Error(t, err)

	_, err = NewCompiler(WithMatchTimeout(-time.Second))
	assert.Error(t, err)

	c, err := NewCompiler(WithMatchTimeout(50 * time.Millisecond))
	require.NoError(t, err)
	compiled, err := c.Compile("{%x%}")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, compiled.Regexp().MatchTimeout)
}

func TestCompiler_Load(t *testing.T) {
	c, err := NewCompiler()
	require.NoError(t, err)

	tpl, err := c.Load(Source{ID: "orders/shipped.txt", Text: "Order #{%id%} shipped"})
	require.NoError(t, err)
	assert.Equal(t, "orders/shipped.txt", tpl.ID)
	assert.Equal(t, "Order #{%id%} shipped", tpl.Raw)
	assert.Equal(t, []string{"id"}, tpl.Variables)

	_, err = c.Load(Source{ID: "bad.txt", Text: "{%a%}{%a%}"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateVariableName)
	assert.Contains(t, err.Error(), "bad.txt")
}
