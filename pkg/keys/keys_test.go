package keys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chainview/pkg/keys"
)

func TestKeyBind_String(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		kb   *keys.KeyBind
		want string
	}{
		"single": {
			kb:   keys.NewBind("quit", keys.New("q")),
			want: "q",
		},
		"alias and hidden": {
			kb: keys.NewBind("next page",
				keys.New("n"),
				keys.New("pgdown", keys.WithAlias("pgdn")),
				keys.New("ctrl+f", keys.Hidden()),
			),
			want: "n/pgdn",
		},
		"all hidden": {
			kb:   keys.NewBind("secret", keys.New("x", keys.Hidden())),
			want: "",
		},
		"nil": {
			kb:   nil,
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.kb.String())
		})
	}
}

func TestKeyBind_Match(t *testing.T) {
	t.Parallel()

	kb := keys.NewBind("copy", keys.New("y"), keys.New("c", keys.Hidden()))

	assert.True(t, kb.Match("y"))
	assert.True(t, kb.Match("c"))
	assert.False(t, kb.Match("Y"))

	var none *keys.KeyBind
	assert.False(t, none.Match("y"))
}

func TestKeyBind_Row(t *testing.T) {
	t.Parallel()

	kb := keys.NewBind("refresh totals", keys.New("r"))

	assert.Equal(t, "r    refresh totals", kb.Row(3, 14))
	assert.Equal(t, "r    refresh…", kb.Row(3, 8))
	assert.Empty(t, keys.NewBind("hidden", keys.New("h", keys.Hidden())).Row(3, 10))
}

func TestSetDefault(t *testing.T) {
	t.Parallel()

	def := keys.NewBind("help", keys.New("?"))

	var unset *keys.KeyBind
	keys.SetDefault(&unset, def)
	require.NotNil(t, unset)
	assert.Equal(t, "?", unset.String())

	// The default is copied, not shared.
	unset.Description = "changed"
	assert.Equal(t, "help", def.Description)

	partial := &keys.KeyBind{Keys: []keys.Key{keys.New("h")}}
	keys.SetDefault(&partial, def)
	assert.Equal(t, "h", partial.String())
	assert.Equal(t, "help", partial.Description)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	quit := keys.NewBind("quit", keys.New("q"), keys.New("ctrl+c"))
	help := keys.NewBind("help", keys.New("?"))

	require.NoError(t, keys.Validate(quit, help, nil))

	err := keys.Validate(quit, help, keys.NewBind("query", keys.New("q")))
	require.ErrorIs(t, err, keys.ErrDuplicateKey)
	assert.Contains(t, err.Error(), `"q" used by "quit" and "query"`)
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	var r keys.Renderer
	assert.Empty(t, r.Render(80))

	r.AddColumn(
		keys.NewBind("quit", keys.New("q")),
		keys.NewBind("help", keys.New("?")),
	)
	r.AddColumn(keys.NewBind("next tab", keys.New("tab")))
	r.AddColumn()

	out := r.Render(40)
	assert.Equal(t, " q  quit             tab  next tab\n ?  help", out)
}
