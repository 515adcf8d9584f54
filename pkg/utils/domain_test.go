package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare domain", "example.com", "example.com"},
		{"uppercase", "EXAMPLE.COM", "example.com"},
		{"scheme", "https://example.com", "example.com"},
		{"scheme and path", "https://example.com/blog/post?id=1", "example.com"},
		{"www prefix", "www.example.com", "example.com"},
		{"scheme www trailing slash", "https://www.Example.com/", "example.com"},
		{"port", "example.com:8080", "example.com"},
		{"scheme and port", "http://example.com:8080", "example.com"},
		{"credentials", "user:pass@example.com", "example.com"},
		{"path without scheme", "example.com/wp-admin", "example.com"},
		{"fragment", "example.com#top", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"subdomain kept", "staging.example.com", "staging.example.com"},
		{"surrounding space", "  example.com  ", "example.com"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeDomain(tc.input))
		})
	}
}

func TestNormalizeDomain_EquivalentFormsBindTheSameSlot(t *testing.T) {
	forms := []string{
		"example.com",
		"https://example.com",
		"http://www.example.com/",
		"Example.COM:443",
		"https://www.example.com/shop?ref=1",
	}

	for _, f := range forms {
		assert.Equal(t, "example.com", NormalizeDomain(f), f)
	}
}
