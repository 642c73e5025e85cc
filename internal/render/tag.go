package render

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crimson-sun/hyprink/internal/model"
)

// TagStyle controls how a level becomes the bracketed tag.
type TagStyle struct {
	Prefix    string
	Suffix    string
	Transform string // none, uppercase, lowercase, capitalize
	MinWidth  int
	Alignment string // left, right, center
}

// DefaultTagStyle renders "[INFO]".
func DefaultTagStyle() TagStyle {
	return TagStyle{Prefix: "[", Suffix: "]", Transform: "uppercase", Alignment: "center"}
}

// Tag builds the tag for level: label lookup, transform, pad, bracket.
func Tag(style TagStyle, labels map[string]string, level model.Level) string {
	label, ok := labels[level.String()]
	if !ok {
		label = level.String()
	}
	return style.Prefix + pad(transform(style.Transform, label), style.MinWidth, style.Alignment) + style.Suffix
}

// transform builds a fresh Caser per call; a Caser is not safe for
// concurrent use.
func transform(mode, s string) string {
	switch mode {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 {
			return s
		}
		return cases.Upper(language.Und).String(string(r)) + s[size:]
	default:
		return s
	}
}

// pad widens s to width display columns.
func pad(s string, width int, align string) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case "left":
		return s + strings.Repeat(" ", gap)
	case "right":
		return strings.Repeat(" ", gap) + s
	default:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
}
