package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// TranscriptProvider fetches the ordered caption transcript for a video ID.
type TranscriptProvider interface {
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// ClassifyTranscriptError maps any provider failure into the closed
// transcript-failure taxonomy by inspecting the failure text
// case-insensitively. The returned messages are what the API surfaces.
func ClassifyTranscriptError(err error) *PipelineError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "disabled"):
		return NewPipelineError(FailureTranscriptsDisabled,
			"Transcripts are disabled for this video.", err)
	case strings.Contains(msg, "no transcript"), strings.Contains(msg, "not found"):
		return NewPipelineError(FailureTranscriptNotFound,
			"No transcript found for this video. It might not have captions.", err)
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "private"):
		return NewPipelineError(FailureVideoUnavailable,
			"Video is unavailable. It might be private or deleted.", err)
	default:
		return NewPipelineError(FailureTranscriptFetch,
			fmt.Sprintf("Failed to fetch transcript: %v", err), err)
	}
}

// YouTubeTranscripts fetches captions via the public watch page: the page
// embeds the list of caption tracks, each pointing at a timedtext URL that
// serves the segments as JSON.
type YouTubeTranscripts struct {
	client  *http.Client
	baseURL string
}

// NewYouTubeTranscripts creates a transcript provider with the given
// request timeout.
func NewYouTubeTranscripts(timeout time.Duration) *YouTubeTranscripts {
	return &YouTubeTranscripts{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://www.youtube.com",
	}
}

// NewYouTubeTranscriptsWithBase is used by tests to point the provider at a
// stub server.
func NewYouTubeTranscriptsWithBase(baseURL string, timeout time.Duration) *YouTubeTranscripts {
	return &YouTubeTranscripts{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// Fetch implements TranscriptProvider. Segments come back in the order the
// timedtext endpoint serves them, which is chronological.
func (yt *YouTubeTranscripts) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := yt.get(ctx, yt.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}

	track, err := pickCaptionTrack(page, videoID)
	if err != nil {
		return nil, err
	}

	trackURL := track.BaseURL
	if strings.HasPrefix(trackURL, "/") {
		trackURL = yt.baseURL + trackURL
	}
	if !strings.Contains(trackURL, "fmt=json3") {
		trackURL += "&fmt=json3"
	}

	body, err := yt.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetching caption track: %w", err)
	}

	return parseTimedText(body)
}

func (yt *YouTubeTranscripts) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := yt.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("video unavailable (HTTP %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// pickCaptionTrack finds the English caption track in the watch page,
// preferring manual captions over auto-generated ("asr") ones.
func pickCaptionTrack(page []byte, videoID string) (*captionTrack, error) {
	m := captionTracksRe.FindSubmatch(page)
	if m == nil {
		if strings.Contains(strings.ToLower(string(page)), "\"playabilitystatus\":{\"status\":\"error\"") {
			return nil, fmt.Errorf("video %s is unavailable", videoID)
		}
		return nil, fmt.Errorf("no transcript found for video %s", videoID)
	}

	var tracks []captionTrack
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		return nil, fmt.Errorf("parsing caption track list: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no transcript found for video %s", videoID)
	}

	var fallback *captionTrack
	for i := range tracks {
		t := &tracks[i]
		if !strings.HasPrefix(t.LanguageCode, "en") {
			continue
		}
		if t.Kind != "asr" {
			return t, nil
		}
		if fallback == nil {
			fallback = t
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return &tracks[0], nil
}

// timedText is the json3 shape served by the timedtext endpoint.
type timedText struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func parseTimedText(body []byte) (*Transcript, error) {
	var tt timedText
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parsing caption track: %w", err)
	}

	transcript := &Transcript{}
	for _, ev := range tt.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(sb.String(), "\n", " "))
		if text == "" {
			continue
		}
		transcript.Segments = append(transcript.Segments, TranscriptSegment{
			Text:     text,
			Start:    float64(ev.StartMs) / 1000,
			Duration: float64(ev.DurationMs) / 1000,
		})
	}

	if len(transcript.Segments) == 0 {
		return nil, fmt.Errorf("no transcript content found")
	}
	return transcript, nil
}
