package telegram

import (
	"fmt"
	"strings"

	pstrings "djnic/internal/platform/strings"
	dvdom "djnic/internal/services/delivery/domain"
)

// DateLayout renders the event date footer
const DateLayout = "02/01/2006"

// Format renders n as Telegram HTML.
// Links to site paths are made absolute against base.
func Format(n dvdom.Notification, base string) string {
	var b strings.Builder
	if n.Title != "" {
		b.WriteString("<b>" + pstrings.EscapeHTML(n.Title) + "</b>")
	}
	if desc := field(n.EventData, "description"); desc != "" {
		b.WriteString("\n" + pstrings.EscapeHTML(desc))
	}
	if domain := field(n.EventData, "domain"); domain != "" {
		if path := field(n.EventData, "domain_url"); path != "" {
			b.WriteString("\n<a href=\"" + absURL(base, path) + "\">" + pstrings.EscapeHTML(domain) + "</a>")
		}
	}
	before, after := field(n.EventData, "anterior"), field(n.EventData, "nuevo")
	if before != "" && after != "" {
		b.WriteString("\n" + pstrings.EscapeHTML(before) + " → " + pstrings.EscapeHTML(after))
	}
	if n.EventDate != nil {
		b.WriteString("\n\n" + n.EventDate.Format(DateLayout))
	}
	return b.String()
}

func field(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func absURL(base, path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(base, "/") + path
}
