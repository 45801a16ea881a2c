package internal

import (
	"fmt"
	"strings"
	"time"
)

// TranscriptSegment is one unit of spoken content with its timing.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the ordered sequence of segments for one video.
// Segments arrive in chronological order from the provider and are
// never re-sorted here.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

// FullText joins all segment texts with single spaces, in order.
func (t *Transcript) FullText() string {
	parts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// TimingSummary returns the three numbers the analysis prompt gets instead
// of per-segment timing: segment count, first start, last start.
func (t *Transcript) TimingSummary() (count int, firstStart, lastStart float64) {
	count = len(t.Segments)
	if count > 0 {
		firstStart = t.Segments[0].Start
		lastStart = t.Segments[count-1].Start
	}
	return count, firstStart, lastStart
}

// Highlight is one notable moment identified by the analysis engine.
type Highlight struct {
	Seconds int    `json:"seconds"`
	Time    string `json:"time"`
	Reason  string `json:"reason"`
}

// AnalysisRecord is the persisted result of one successful analysis.
// Exactly one record exists per video ID; a re-analysis replaces the
// prior record in full.
type AnalysisRecord struct {
	VideoID    string      `json:"video_id"`
	VideoTitle string      `json:"video_title"`
	Timestamps []Highlight `json:"timestamps"`
	CreatedAt  time.Time   `json:"created_at"`
}

// PlaceholderTitle synthesizes the stored title for a video. No title
// fetch step exists, so the ID is embedded for recognizability.
func PlaceholderTitle(videoID string) string {
	return fmt.Sprintf("YouTube Video (%s)", videoID)
}

// AnalyzeResult is what the orchestrator hands back to a caller: the
// record plus whether it was served from cache.
type AnalyzeResult struct {
	Record *AnalysisRecord
	Cached bool
}
