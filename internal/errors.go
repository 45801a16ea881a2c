package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies every external-boundary fault into a closed set
// before it crosses back into the orchestrator. No raw transport error ever
// reaches a client unclassified.
type FailureKind int

const (
	FailureUnknown FailureKind = iota

	// Client gave a URL no recognized shape matches.
	FailureInvalidInput

	// Transcript provider failures.
	FailureTranscriptsDisabled
	FailureTranscriptNotFound
	FailureVideoUnavailable
	FailureTranscriptFetch

	// Analysis engine failures.
	FailureAnalysisUnconfigured
	FailureAnalysisTimeout
	FailureAnalysisMalformed
	FailureAnalysisUpstream

	// Read-only lookup found nothing cached.
	FailureCacheMiss
)

// String returns a stable identifier for logs.
func (k FailureKind) String() string {
	switch k {
	case FailureInvalidInput:
		return "invalid_input"
	case FailureTranscriptsDisabled:
		return "transcripts_disabled"
	case FailureTranscriptNotFound:
		return "transcript_not_found"
	case FailureVideoUnavailable:
		return "video_unavailable"
	case FailureTranscriptFetch:
		return "transcript_fetch_error"
	case FailureAnalysisUnconfigured:
		return "analysis_unconfigured"
	case FailureAnalysisTimeout:
		return "analysis_timeout"
	case FailureAnalysisMalformed:
		return "analysis_malformed"
	case FailureAnalysisUpstream:
		return "analysis_upstream_error"
	case FailureCacheMiss:
		return "cache_miss"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a failure kind to the status surfaced by the API:
// input and transcript problems are the client's (400), analysis problems
// are ours or upstream's (500), a bare lookup miss is 404.
func (k FailureKind) HTTPStatus() int {
	switch k {
	case FailureInvalidInput, FailureTranscriptsDisabled, FailureTranscriptNotFound,
		FailureVideoUnavailable, FailureTranscriptFetch:
		return http.StatusBadRequest
	case FailureCacheMiss:
		return http.StatusNotFound
	case FailureAnalysisUnconfigured, FailureAnalysisTimeout,
		FailureAnalysisMalformed, FailureAnalysisUpstream:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// PipelineError carries a classified failure and the message shown to the
// client. The wrapped cause stays server-side.
type PipelineError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a classified failure.
func NewPipelineError(kind FailureKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: cause}
}

// AsPipelineError extracts a classified failure from an error chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
