package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptData for template injection. The analysis engine is deliberately
// given only three timing numbers instead of per-segment timing, which
// bounds prompt size at the cost of alignment precision.
type PromptData struct {
	Transcript   string
	SegmentCount int
	FirstStart   float64
	LastStart    float64
}

// PromptManager handles loading and processing prompt templates
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	// Configure prompt based on config setting
	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// CreatePrompt builds the analysis prompt from a transcript.
func (pm *PromptManager) CreatePrompt(transcript *Transcript) (string, error) {
	var tmplContent string

	if pm.promptString != "" {
		tmplContent = pm.promptString
	} else {
		promptFile := pm.promptFile
		if promptFile == "" {
			// Use default prompt from config directory, falling back to the
			// embedded template when it has not been materialized yet.
			promptFile = filepath.Join(pm.configDir, "prompt.txt")
			if !FileExists(promptFile) {
				embedded, err := defaultFS.ReadFile("prompt.txt")
				if err != nil {
					return "", fmt.Errorf("reading embedded prompt template: %w", err)
				}
				return pm.buildPromptFromTemplate(string(embedded), transcript)
			}
		}

		content, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt template: %w", err)
		}
		tmplContent = string(content)
	}

	return pm.buildPromptFromTemplate(tmplContent, transcript)
}

// buildPromptFromTemplate renders the prompt template with transcript text
// and the timing summary.
func (pm *PromptManager) buildPromptFromTemplate(templateContent string, transcript *Transcript) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	count, first, last := transcript.TimingSummary()
	data := PromptData{
		Transcript:   transcript.FullText(),
		SegmentCount: count,
		FirstStart:   first,
		LastStart:    last,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
