package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/textparser/internal/template"
)

func load(t *testing.T, sources ...template.Source) []*template.Template {
	t.Helper()
	compiler, err := template.NewCompiler()
	require.NoError(t, err)

	templates := make([]*template.Template, 0, len(sources))
	for _, src := range sources {
		tpl, err := compiler.Load(src)
		require.NoError(t, err)
		templates = append(templates, tpl)
	}
	return templates
}

func ids(templates []*template.Template) []string {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, t.ID)
	}
	return out
}

func TestSelect_Enumerate(t *testing.T) {
	templates := load(t,
		template.Source{ID: "b.txt", Text: "B {%x%}"},
		template.Source{ID: "c.txt", Text: "C {%x%}"},
		template.Source{ID: "a.txt", Text: "A {%x%}"},
	)

	selected := Select("anything", templates, ModeEnumerate)
	assert.Equal(t, []string{"c.txt", "b.txt", "a.txt"}, ids(selected))

	// Input order must not leak into the result.
	reversed := []*template.Template{templates[2], templates[0], templates[1]}
	assert.Equal(t, ids(selected), ids(Select("anything", reversed, ModeEnumerate)))

	// The caller's slice is left alone.
	assert.Equal(t, []string{"b.txt", "c.txt", "a.txt"}, ids(templates))
}

func TestSelect_BestFit(t *testing.T) {
	templates := load(t,
		template.Source{ID: "t1", Text: "Order #{%id%} shipped"},
		template.Source{ID: "t2", Text: "Invoice #{%id%} paid"},
	)

	selected := Select("Invoice #4521 paid", templates, ModeBestFit)
	require.Len(t, selected, 1)
	assert.Equal(t, "t2", selected[0].ID)
}

func TestSelect_BestFitTieKeepsFirstInEnumerationOrder(t *testing.T) {
	templates := load(t,
		template.Source{ID: "a", Text: "same {%x%}"},
		template.Source{ID: "b", Text: "same {%x%}"},
	)

	selected := Select("same text", templates, ModeBestFit)
	require.Len(t, selected, 1)
	assert.Equal(t, "b", selected[0].ID)
}

func TestSelect_BestFitNoSimilarityStillPicksOne(t *testing.T) {
	templates := load(t, template.Source{ID: "only", Text: "{%x%}"})

	selected := Select("zzz", templates, ModeBestFit)
	require.Len(t, selected, 1)
	assert.Equal(t, "only", selected[0].ID)
}

func TestSelect_Empty(t *testing.T) {
	assert.Empty(t, Select("text", nil, ModeEnumerate))
	assert.Empty(t, Select("text", nil, ModeBestFit))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeEnumerate},
		{in: "enumerate", want: ModeEnumerate},
		{in: "first-match", want: ModeEnumerate},
		{in: "Best-Fit", want: ModeBestFit},
		{in: "bestfit", want: ModeBestFit},
		{in: "fuzzy", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMode_Text(t *testing.T) {
	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("best-fit")))
	assert.Equal(t, ModeBestFit, m)

	text, err := ModeEnumerate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "enumerate", string(text))
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
