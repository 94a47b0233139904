// Package keys describes configurable key bindings and renders them as
// help columns.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/macropower/chainview/pkg/ui/theme"
)

var ErrDuplicateKey = errors.New("duplicate key binding")

// Key is one keyboard key.
type Key struct {
	// Code is the key as reported by the terminal, e.g. "ctrl+c".
	Code string `json:"code" jsonschema:"title=Code" validate:"required"`
	// Alias is shown in help instead of the code.
	Alias string `json:"alias,omitempty" jsonschema:"title=Alias"`
	// Hidden keys work but are not shown in help.
	Hidden bool `json:"hidden,omitempty" jsonschema:"title=Hidden"`
}

type KeyOpt func(k *Key)

func New(code string, opts ...KeyOpt) Key {
	k := Key{Code: code}
	for _, opt := range opts {
		opt(&k)
	}

	return k
}

func WithAlias(alias string) KeyOpt {
	return func(k *Key) {
		k.Alias = alias
	}
}

func Hidden() KeyOpt {
	return func(k *Key) {
		k.Hidden = true
	}
}

func (k Key) String() string {
	if k.Alias != "" {
		return k.Alias
	}

	return k.Code
}

// KeyBind is an action and the keys that trigger it.
type KeyBind struct {
	Description string `json:"description" jsonschema:"title=Description"`
	Keys        []Key  `json:"keys"        jsonschema:"title=Keys"        validate:"dive"`
}

func NewBind(description string, keys ...Key) *KeyBind {
	return &KeyBind{Description: description, Keys: keys}
}

// String joins the visible keys with "/".
func (kb *KeyBind) String() string {
	if kb == nil {
		return ""
	}

	keys := make([]string, 0, len(kb.Keys))
	for _, k := range kb.Keys {
		if !k.Hidden {
			keys = append(keys, k.String())
		}
	}

	return strings.Join(keys, "/")
}

// Match reports whether key triggers the binding.
func (kb *KeyBind) Match(key string) bool {
	if kb == nil {
		return false
	}

	for _, k := range kb.Keys {
		if k.Code == key {
			return true
		}
	}

	return false
}

// Row renders the binding padded to keyWidth, followed by its description
// truncated to descWidth. Bindings without visible keys render as "".
func (kb *KeyBind) Row(keyWidth, descWidth int) string {
	keys := kb.String()
	if keys == "" {
		return ""
	}

	desc := truncate.StringWithTail(kb.Description, uint(max(descWidth, 0)), theme.Ellipsis)

	return keys + pad(keyWidth-ansi.PrintableRuneWidth(keys)) +
		"  " + desc + pad(descWidth-ansi.PrintableRuneWidth(desc))
}

// SetDefault fills a nil or partially configured binding from def.
func SetDefault(kb **KeyBind, def *KeyBind) {
	if *kb == nil {
		c := *def
		*kb = &c

		return
	}

	if len((*kb).Keys) == 0 {
		(*kb).Keys = def.Keys
	}

	if (*kb).Description == "" {
		(*kb).Description = def.Description
	}
}

// Validate returns an error for every key code bound more than once.
func Validate(kbs ...*KeyBind) error {
	var errs []error

	seen := map[string]string{}
	for _, kb := range kbs {
		if kb == nil {
			continue
		}

		for _, k := range kb.Keys {
			if other, ok := seen[k.Code]; ok {
				errs = append(errs, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateKey, k.Code, other, kb.Description))

				continue
			}

			seen[k.Code] = kb.Description
		}
	}

	return errors.Join(errs...)
}

// Renderer lays out bindings in columns.
type Renderer struct {
	columns [][]*KeyBind
}

func (r *Renderer) AddColumn(kbs ...*KeyBind) {
	if len(kbs) > 0 {
		r.columns = append(r.columns, kbs)
	}
}

// Render spreads the columns evenly across width.
func (r *Renderer) Render(width int) string {
	if len(r.columns) == 0 {
		return ""
	}

	colWidth := max(width/len(r.columns)-2, 6)

	cols := make([][]string, len(r.columns))
	height := 0

	for i, col := range r.columns {
		cols[i] = column(colWidth, col)
		height = max(height, len(cols[i]))
	}

	lines := make([]string, 0, height)
	for row := range height {
		var sb strings.Builder
		for _, col := range cols {
			cell := pad(colWidth)
			if row < len(col) {
				cell = col[row]
			}

			sb.WriteString(" " + cell + " ")
		}

		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}

	return strings.Join(lines, "\n")
}

func column(width int, kbs []*KeyBind) []string {
	keyWidth := 0
	for _, kb := range kbs {
		keyWidth = max(keyWidth, ansi.PrintableRuneWidth(kb.String()))
	}

	rows := []string{}
	for _, kb := range kbs {
		if row := kb.Row(keyWidth, width-keyWidth-2); row != "" {
			rows = append(rows, row)
		}
	}

	return rows
}

func pad(n int) string {
	return strings.Repeat(" ", max(n, 0))
}
