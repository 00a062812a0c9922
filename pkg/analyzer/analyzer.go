// Package analyzer defines the contract every forensic detector implements
// and the pipeline that runs them over an image.
package analyzer

import (
	"io"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/models"
)

// Analyzer is implemented by every forensic detector.
type Analyzer interface {
	// Name returns the analyzer's display name, also the key of its result
	// in the pipeline output.
	Name() string

	// Available reports whether the analyzer can run on this system.
	// Pure-computation analyzers are always available; tool-backed ones
	// depend on their external binary being resolvable.
	Available() bool

	// Run analyzes the image at the given path. It never returns nil: any
	// failure becomes an error-status result instead of escaping.
	Run(imagePath string) *models.AnalysisResult
}

// BaseAnalyzer carries the common identity and availability state.
// Availability is computed once at construction and only changes through an
// explicit SetAvailable override.
type BaseAnalyzer struct {
	name      string
	command   string
	available bool
	log       logrus.FieldLogger
}

// NewBaseAnalyzer builds the shared state for a pure-computation analyzer.
func NewBaseAnalyzer(name string, log logrus.FieldLogger) BaseAnalyzer {
	return BaseAnalyzer{name: name, available: true, log: namedLogger(log, name)}
}

// NewToolAnalyzer builds the shared state for an analyzer that wraps an
// external command, probing the system path once for availability.
func NewToolAnalyzer(name, command string, log logrus.FieldLogger) BaseAnalyzer {
	_, err := exec.LookPath(command)
	base := BaseAnalyzer{name: name, command: command, available: err == nil, log: namedLogger(log, name)}
	if err != nil {
		base.log.Warnf("%s not found on PATH, analyzer unavailable", command)
	} else {
		base.log.Debugf("%s resolved on PATH", command)
	}
	return base
}

func namedLogger(log logrus.FieldLogger, name string) logrus.FieldLogger {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		return discard
	}
	return log.WithField("analyzer", name)
}

// Name returns the analyzer name.
func (b *BaseAnalyzer) Name() string {
	return b.name
}

// Available reports the availability computed at construction.
func (b *BaseAnalyzer) Available() bool {
	return b.available
}

// Command returns the external command name, empty for pure analyzers.
func (b *BaseAnalyzer) Command() string {
	return b.command
}

// SetAvailable overrides availability, used to disable an analyzer's
// external dependency before a run.
func (b *BaseAnalyzer) SetAvailable(available bool) {
	b.available = available
}

// Log returns the analyzer's logging sink.
func (b *BaseAnalyzer) Log() logrus.FieldLogger {
	return b.log
}

// CheckInput validates that the input image exists, returning a ready error
// result when it does not. Every analyzer calls this on entry to Run.
func (b *BaseAnalyzer) CheckInput(imagePath string) *models.AnalysisResult {
	if _, err := os.Stat(imagePath); err != nil {
		b.log.Errorf("input image not found: %s", imagePath)
		return models.ErrorResult(b.name, "image file not found: "+imagePath)
	}
	return nil
}
