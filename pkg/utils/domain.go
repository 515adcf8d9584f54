package utils

import (
	"net/url"
	"strings"
)

// NormalizeDomain reduces a site URL to its canonical bound form: lowercase
// host without scheme, credentials, port, "www." prefix, path or trailing
// slash. Activation rows always store the normalized form so that
// "https://www.Example.com/" and "example.com" bind the same slot.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}

	// Strip anything after the host for scheme-less inputs.
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s, "]") {
		s = s[:i]
	}

	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}
