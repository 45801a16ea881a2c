package internal

import (
	"context"
	"fmt"
	"time"
)

// App holds the application state and dependencies
type App struct {
	store       Store
	transcripts TranscriptProvider
	analyzer    Analyzer
	logger      *Logger
	config      *Config

	// now is swappable in tests
	now func() time.Time
}

// NewApp initializes the application
func NewApp(config *Config, logger *Logger, options ...AppOption) *App {
	promptManager := NewPromptManager(config.ConfigDir, config.Prompt)

	app := &App{
		store:       NewFileStore(config.CacheFile, logger),
		transcripts: NewYouTubeTranscripts(30 * time.Second),
		analyzer: NewAIWithKey(config.OpenRouterAPIKey, config.OpenRouterURL,
			promptManager, config.Model, config.AnalysisTimeout),
		logger: logger,
		config: config,
		now:    time.Now,
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithStore sets a custom cache store
func WithStore(store Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// WithTranscripts sets a custom transcript provider
func WithTranscripts(provider TranscriptProvider) AppOption {
	return func(a *App) {
		a.transcripts = provider
	}
}

// WithAnalyzer sets a custom analysis engine
func WithAnalyzer(analyzer Analyzer) AppOption {
	return func(a *App) {
		a.analyzer = analyzer
	}
}

// Analyze runs the full pipeline for a raw URL: extract ID, consult the
// cache, and on a miss fetch the transcript, analyze it, and persist the
// result. Every external-call failure is terminal for the request; no
// retries happen here, the client retries by re-issuing the call.
func (app *App) Analyze(ctx context.Context, youtubeURL string) (*AnalyzeResult, error) {
	videoID, err := ExtractVideoID(youtubeURL)
	if err != nil {
		return nil, NewPipelineError(FailureInvalidInput,
			"Invalid YouTube URL. Please provide a valid YouTube video link.", err)
	}

	log := app.logger.WithVideo(videoID)

	// Cache hit is the sole fast path: it skips a network round trip and a
	// paid inference call.
	if record, found, err := app.store.Get(ctx, videoID); err == nil && found {
		log.Debug("serving analysis from cache")
		return &AnalyzeResult{Record: record, Cached: true}, nil
	}

	transcript, err := app.transcripts.Fetch(ctx, videoID)
	if err != nil {
		classified := ClassifyTranscriptError(err)
		log.WithError(err).WithField("failure", classified.Kind.String()).
			Info("transcript fetch failed")
		return nil, classified
	}

	highlights, err := app.analyzer.Analyze(ctx, transcript)
	if err != nil {
		if classified, ok := AsPipelineError(err); ok {
			log.WithError(err).WithField("failure", classified.Kind.String()).
				Warn("analysis failed")
			return nil, classified
		}
		return nil, NewPipelineError(FailureAnalysisUpstream,
			fmt.Sprintf("AI analysis failed: %v", err), err)
	}

	record := &AnalysisRecord{
		VideoID:    videoID,
		VideoTitle: PlaceholderTitle(videoID),
		Timestamps: highlights,
		CreatedAt:  app.now().UTC(),
	}

	// Persistence is best-effort: the analysis already succeeded, so a
	// storage hiccup must not discard the computed value. The failure is
	// observed in logs only.
	if err := app.store.Put(ctx, videoID, record); err != nil {
		log.WithError(err).Warn("failed to save analysis to cache")
	}

	return &AnalyzeResult{Record: record, Cached: false}, nil
}

// Results is the read-only entry point: it looks up a previously computed
// analysis by video ID and never populates the cache.
func (app *App) Results(ctx context.Context, videoID string) (*AnalysisRecord, error) {
	record, found, err := app.store.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NewPipelineError(FailureCacheMiss,
			"No analysis found for this video. Use /api/analyze to analyze it first.", nil)
	}
	return record, nil
}
