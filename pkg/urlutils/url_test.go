package urlutils

import "testing"

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"valid https URL", "https://example.com/rss", true},
		{"valid http URL", "http://example.com/feed.xml", true},
		{"URL with port", "http://localhost:8080/rss", true},
		{"missing scheme", "example.com/rss", false},
		{"missing host", "https://", false},
		{"plain text", "not a url", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidURL(tt.url); got != tt.expected {
				t.Errorf("IsValidURL(%q) = %v, expected %v", tt.url, got, tt.expected)
			}
		})
	}
}
