package render

import "strings"

type field uint8

const (
	fieldLiteral field = iota
	fieldTag
	fieldIcon
	fieldScope
	fieldMsg
	fieldTimestamp
	fieldApp
	fieldLevel
)

var placeholders = map[string]field{
	"{tag}":       fieldTag,
	"{icon}":      fieldIcon,
	"{scope}":     fieldScope,
	"{source}":    fieldScope,
	"{msg}":       fieldMsg,
	"{timestamp}": fieldTimestamp,
	"{app}":       fieldApp,
	"{level}":     fieldLevel,
}

type part struct {
	field field
	text  string
}

// parse splits a template into literal runs and placeholders.
func parse(tmpl string) []part {
	var parts []part
	lit := 0
	flush := func(end int) {
		if end > lit {
			parts = append(parts, part{text: tmpl[lit:end]})
		}
	}
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '{' {
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			break
		}
		f, ok := placeholders[tmpl[i:i+end+1]]
		if !ok {
			continue
		}
		flush(i)
		parts = append(parts, part{field: f})
		i += end
		lit = i + 1
	}
	flush(len(tmpl))
	return parts
}

var strftime = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%e", "_2",
	"%H", "15",
	"%I", "03",
	"%M", "04",
	"%S", "05",
	"%p", "PM",
	"%b", "Jan",
	"%B", "January",
	"%a", "Mon",
	"%A", "Monday",
	"%z", "-0700",
	"%Z", "MST",
	"%F", "2006-01-02",
	"%T", "15:04:05",
	"%%", "%",
)

// Layout converts a strftime pattern ("%Y-%m-%d") to a Go time layout.
// Strings without '%' are taken to be Go layouts already.
func Layout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return strftime.Replace(format)
}
