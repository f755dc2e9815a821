package catalog

import (
	"net/url"
	"strings"
)

// ExtractQueryName turns a shared offer link into a searchable name by
// taking the last path segment and de-slugging it. Plain text queries pass
// through untouched.
func ExtractQueryName(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	lower := strings.ToLower(query)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "www.") {
		return query
	}

	raw := query
	if !strings.HasPrefix(lower, "http") {
		raw = "https://" + query
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return query
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return query
	}

	last := segments[len(segments)-1]
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}
	last = strings.NewReplacer("-", " ", "_", " ").Replace(last)
	last = strings.TrimSpace(last)
	if last == "" {
		return query
	}
	return last
}
