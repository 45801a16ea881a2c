package internal

import (
	"errors"
	"regexp"
)

// ErrNoVideoID means no recognized URL shape matched. This is an expected
// outcome for arbitrary input, not a system fault.
var ErrNoVideoID = errors.New("no YouTube video ID found in URL")

// Recognized URL shapes, tried in priority order: canonical watch page,
// short link, embed player. Each shape is a literal marker followed by an
// 11-character video ID token.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID derives the canonical 11-character video ID from a
// free-form URL string. The token is not validated against YouTube; it only
// has to match a known shape. Returns ErrNoVideoID when nothing matches.
func ExtractVideoID(youtubeURL string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(youtubeURL); m != nil {
			return m[1], nil
		}
	}
	return "", ErrNoVideoID
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidVideoID reports whether a string looks like a YouTube video ID:
// exactly 11 characters of [A-Za-z0-9_-].
func IsValidVideoID(id string) bool {
	return videoIDRe.MatchString(id)
}
