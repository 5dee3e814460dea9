package progress

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// SpinnerSink shows a spinner on stderr while network calls run.
type SpinnerSink struct {
	spinner *spinner.Spinner
}

// NewProgressSink returns a spinner sink for interactive table output and
// a no-op sink otherwise.
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.Output != config.OutputTable {
		return usecase.NopProgress{}
	}
	return NewSpinnerSink()
}

func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.HideCursor = false
	return &SpinnerSink{spinner: s}
}

func (s *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if !event.Spinner {
		s.spinner.Stop()
		return
	}
	if event.Total > 0 {
		s.spinner.Suffix = fmt.Sprintf(" %s (%d/%d)", event.Message, event.Current, event.Total)
	} else {
		s.spinner.Suffix = " " + event.Message
	}
	if !s.spinner.Active() {
		s.spinner.Start()
	}
}

func (s *SpinnerSink) Info(message string) {
	s.spinner.Stop()
	fmt.Fprintln(os.Stderr, message)
}

func (s *SpinnerSink) Error(message string) {
	s.spinner.Stop()
	fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint(message))
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
