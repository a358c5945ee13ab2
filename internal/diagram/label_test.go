package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLabel(t *testing.T) {
	assert.Equal(t, "Check #91;A#93; #amp; #40;B#41;", EscapeLabel("Check [A] & (B)"))
	assert.Equal(t, "#quot;x#quot; #lt;y#gt; #123;z#125; #92; #35;1 #124;", EscapeLabel(`"x" <y> {z} \ #1 |`))
	assert.Equal(t, "plain text", EscapeLabel("plain text"))
}

func TestWrapLabel(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits", "Send invoice", 20, []string{"Send invoice"}},
		{"word boundaries", "Validate the purchase order with finance", 16, []string{"Validate the", "purchase order", "with finance"}},
		{"long word hard break", "abcdefghij xy", 4, []string{"abcd", "efgh", "ij", "xy"}},
		{"long word after text", "ok abcdefgh", 5, []string{"ok", "abcde", "fgh"}},
		{"multibyte counts runes", "éééé ééé", 4, []string{"éééé", "ééé"}},
		{"collapses whitespace", "  a \n b  ", 10, []string{"a b"}},
		{"empty", "   ", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapLabel(tt.in, tt.width))
		})
	}
}

func TestFormatLabelEscapesEachLine(t *testing.T) {
	assert.Equal(t, "Approve#40;s#41;<br/>quote", formatLabel("Approve(s) quote", 10))
}
