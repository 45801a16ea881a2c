package internal

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short URL with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"underscore and dash in ID", "https://youtu.be/a-b_c1D2e3F", "a-b_c1D2e3F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"plain text", "not a url"},
		{"other site", "https://vimeo.com/123456"},
		{"ID too short", "https://www.youtube.com/watch?v=short"},
		{"bare ID without host", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractVideoID(tt.url); !errors.Is(err, ErrNoVideoID) {
				t.Errorf("ExtractVideoID(%q) error = %v, want ErrNoVideoID", tt.url, err)
			}
		})
	}
}

func TestIsValidVideoID(t *testing.T) {
	valid := []string{"dQw4w9WgXcQ", "a-b_c1D2e3F", "___________"}
	for _, id := range valid {
		if !IsValidVideoID(id) {
			t.Errorf("IsValidVideoID(%q) = false, want true", id)
		}
	}

	invalid := []string{"", "short", "dQw4w9WgXcQ2", "dQw4w9WgXc!", "dQw4w9WgXc "}
	for _, id := range invalid {
		if IsValidVideoID(id) {
			t.Errorf("IsValidVideoID(%q) = true, want false", id)
		}
	}
}
