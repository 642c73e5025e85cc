package render

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// markup expands inline tags in msg. <bold>x</bold> and <name>x</name>,
// where name is a theme color, style their content. Tags do not nest; a tag
// without its closing partner is kept as literal text. style is nil for
// plain output, which drops the tags and keeps their content.
func markup(msg string, style func(tag, text string) string) string {
	var b strings.Builder
	for i := 0; i < len(msg); {
		open := strings.IndexByte(msg[i:], '<')
		if open < 0 {
			b.WriteString(msg[i:])
			break
		}
		b.WriteString(msg[i : i+open])
		i += open

		end := strings.IndexByte(msg[i:], '>')
		if end < 0 {
			b.WriteByte('<')
			i++
			continue
		}
		name := msg[i+1 : i+end]
		body := i + end + 1
		closing := "</" + name + ">"
		stop := strings.Index(msg[body:], closing)
		if name == "" || stop < 0 {
			b.WriteByte('<')
			i++
			continue
		}
		text := msg[body : body+stop]
		if style != nil {
			text = style(name, text)
		}
		b.WriteString(text)
		i = body + stop + len(closing)
	}
	return b.String()
}

// styler returns the terminal style function for a color table.
func styler(colors map[string]string) func(tag, text string) string {
	return func(tag, text string) string {
		if tag == "bold" {
			return force(color.New(color.Bold)).Sprint(text)
		}
		hex, ok := colors[tag]
		if !ok {
			return text
		}
		return force(hexColor(hex)).Sprint(text)
	}
}

// hexColor parses "#rrggbb". Anything else is white.
func hexColor(hex string) *color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGB(255, 255, 255)
	}
	return color.RGB(channel(hex[0:2]), channel(hex[2:4]), channel(hex[4:6]))
}

func channel(s string) int {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 255
	}
	return int(v)
}

// force turns styling on regardless of the process-wide NoColor switch;
// the formatter decides about color itself.
func force(c *color.Color) *color.Color {
	c.EnableColor()
	return c
}
