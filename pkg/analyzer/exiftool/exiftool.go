// Package exiftool extracts image metadata through the external exiftool
// binary. Metadata is not scored; it is collected for the report so an
// operator can spot editing software tags, timestamp mismatches and missing
// camera fields.
package exiftool

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/analyzer"
	"pixprobe/pkg/models"
)

// Name is the analyzer's registration name.
const Name = "Metadata Extraction"

const command = "exiftool"

// internalFields are exiftool bookkeeping entries stripped from the output.
var internalFields = []string{"SourceFile", "ExifToolVersion", "FileName", "Directory", "FilePermissions"}

// Analyzer shells out to exiftool and returns its tags as result details.
type Analyzer struct {
	analyzer.BaseAnalyzer
	timeout time.Duration
}

// New creates a metadata analyzer. Availability reflects whether exiftool is
// on the PATH at construction time.
func New(timeout time.Duration, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: analyzer.NewToolAnalyzer(Name, command, log),
		timeout:      timeout,
	}
}

// Run invokes exiftool with JSON output, grouped and duplicated tags
// included. A missing binary yields a tool_unavailable result rather than an
// error so the rest of the pipeline is unaffected.
func (a *Analyzer) Run(imagePath string) *models.AnalysisResult {
	if errResult := a.CheckInput(imagePath); errResult != nil {
		return errResult
	}

	if !a.Available() {
		result := models.NewResult(Name)
		result.Status = models.StatusToolUnavailable
		result.Interpretation = "exiftool is not installed. Metadata extraction was skipped."
		return result
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, "-j", "-G", "-a", "-s", imagePath)
	output, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return models.ErrorResult(Name, fmt.Sprintf("exiftool timed out after %s", a.timeout))
	}
	if err != nil {
		return models.ErrorResult(Name, fmt.Sprintf("exiftool failed: %v", err))
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal(output, &entries); err != nil {
		return models.ErrorResult(Name, fmt.Sprintf("failed to parse exiftool output: %v", err))
	}
	if len(entries) == 0 {
		return models.ErrorResult(Name, "exiftool returned no metadata")
	}

	tags := entries[0]
	for _, field := range internalFields {
		delete(tags, field)
	}

	result := models.NewResult(Name)
	result.Interpretation = fmt.Sprintf("Extracted %d metadata tags.", len(tags))
	for key, value := range tags {
		result.SetDetail(key, value)
	}

	a.Log().Infof("extracted %d metadata tags", len(tags))
	return result
}
