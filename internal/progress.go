package internal

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles user interface concerns for the one-shot CLI surface.
type UIManager interface {
	NewSpinner(description string) Spinner
	Printf(format string, args ...interface{})
}

// Spinner abstracts an indeterminate progress indicator.
type Spinner interface {
	Describe(description string)
	Finish()
}

// StandardUIManager shows spinners only when stdout is an interactive
// terminal and quiet mode is off.
type StandardUIManager struct {
	quiet bool
	tty   bool
}

// NewUIManager creates the UI manager for CLI commands.
func NewUIManager(quiet bool) UIManager {
	return &StandardUIManager{
		quiet: quiet,
		tty:   isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// NewSpinner starts an indeterminate spinner with a description.
func (ui *StandardUIManager) NewSpinner(description string) Spinner {
	if ui.quiet || !ui.tty {
		return &silentSpinner{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &visibleSpinner{bar: bar}
}

// Printf prints a status message unless quiet.
func (ui *StandardUIManager) Printf(format string, args ...interface{}) {
	if !ui.quiet {
		fmt.Printf(format, args...)
	}
}

type visibleSpinner struct {
	bar *progressbar.ProgressBar
}

func (v *visibleSpinner) Describe(description string) {
	v.bar.Describe(description)
}

func (v *visibleSpinner) Finish() {
	_ = v.bar.Finish()
}

type silentSpinner struct{}

func (s *silentSpinner) Describe(string) {}
func (s *silentSpinner) Finish()         {}
