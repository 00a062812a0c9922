// Package report consolidates a pipeline run into persisted forensic
// reports: a machine-readable JSON document and a self-contained HTML page
// for human review.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/acquire"
	"pixprobe/pkg/models"
)

// Report is the consolidated outcome of one analysis run.
type Report struct {
	Image       string                            `json:"image"`
	GeneratedAt time.Time                         `json:"generated_at"`
	Evidence    *acquire.Evidence                 `json:"evidence,omitempty"`
	Order       []string                          `json:"analyzer_order"`
	Results     map[string]*models.AnalysisResult `json:"results"`
	Summary     Summary                           `json:"summary"`
}

// Summary aggregates the run for quick triage.
type Summary struct {
	AnalyzersRun int     `json:"analyzers_run"`
	Errors       int     `json:"errors"`
	MaxScore     float64 `json:"max_score"`
	MaxScoreFrom string  `json:"max_score_from,omitempty"`
	Verdict      string  `json:"verdict"`
}

// Writer persists reports under a base directory.
type Writer struct {
	outputDir string
	log       logrus.FieldLogger
}

// NewWriter creates a report writer rooted at outputDir.
func NewWriter(outputDir string, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.New()
	}
	return &Writer{outputDir: outputDir, log: log}
}

// Build consolidates a pipeline result into a report. Evidence may be nil
// when the run skipped acquisition.
func Build(imagePath string, results *models.PipelineResult, evidence *acquire.Evidence) *Report {
	report := &Report{
		Image:       imagePath,
		GeneratedAt: time.Now(),
		Evidence:    evidence,
		Order:       results.Order,
		Results:     results.Results,
	}
	report.Summary = summarize(results)
	return report
}

func summarize(results *models.PipelineResult) Summary {
	s := Summary{AnalyzersRun: results.Len()}
	for _, name := range results.Order {
		r := results.Results[name]
		if r.IsError() {
			s.Errors++
			continue
		}
		if r.Status == models.StatusSuccess && r.SuspicionScore > s.MaxScore {
			s.MaxScore = r.SuspicionScore
			s.MaxScoreFrom = name
		}
	}
	s.Verdict = verdict(results)
	return s
}

// verdict picks the worst suspicion level any successful analyzer reported.
func verdict(results *models.PipelineResult) string {
	rank := map[string]int{"Low": 0, "Moderate": 1, "High": 2, "Very High": 3}
	worst := "Low"
	found := false
	for _, name := range results.Order {
		r := results.Results[name]
		if r.Status != models.StatusSuccess || r.SuspicionLevel == "" {
			continue
		}
		found = true
		if rank[r.SuspicionLevel] > rank[worst] {
			worst = r.SuspicionLevel
		}
	}
	if !found {
		return "Not Evaluable"
	}
	return worst
}

// WriteJSON persists the report as a timestamped JSON file and returns its
// path.
func (w *Writer) WriteJSON(report *Report) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("report_%s.json", report.GeneratedAt.Format("20060102_150405")))
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.log.Infof("wrote JSON report to %s", path)
	return path, nil
}
