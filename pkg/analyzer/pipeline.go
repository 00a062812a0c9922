package analyzer

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"pixprobe/pkg/models"
)

// Pipeline holds an ordered set of analyzers and runs the enabled subset
// over one image, isolating every analyzer's failures from the rest.
type Pipeline struct {
	entries []*entry
	log     logrus.FieldLogger
}

type entry struct {
	analyzer Analyzer
	enabled  bool
}

// NewPipeline creates an empty pipeline writing to the given logging sink.
func NewPipeline(log logrus.FieldLogger) *Pipeline {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Pipeline{log: log}
}

// Register appends an analyzer in enabled state. Registration order is
// preserved in the aggregated results.
func (p *Pipeline) Register(a Analyzer) {
	p.entries = append(p.entries, &entry{analyzer: a, enabled: true})
}

// SetEnabled flips the enabled flag for the named analyzer. Disabled
// analyzers are skipped entirely: no placeholder result is recorded.
func (p *Pipeline) SetEnabled(name string, enabled bool) bool {
	for _, e := range p.entries {
		if e.analyzer.Name() == name {
			e.enabled = enabled
			return true
		}
	}
	return false
}

// Analyzers returns the registered analyzers in order.
func (p *Pipeline) Analyzers() []Analyzer {
	out := make([]Analyzer, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.analyzer)
	}
	return out
}

// ExecuteAll runs every enabled analyzer sequentially over the image. A
// fault inside one analyzer, including a panic, is converted into an
// error-status result under that analyzer's name and the batch continues:
// one analyzer can never abort the others.
func (p *Pipeline) ExecuteAll(imagePath string) *models.PipelineResult {
	p.log.Infof("running analysis pipeline on %s", imagePath)

	results := models.NewPipelineResult()
	for _, e := range p.entries {
		if !e.enabled {
			p.log.Debugf("skipping disabled analyzer %s", e.analyzer.Name())
			continue
		}
		name := e.analyzer.Name()
		result := p.runOne(e.analyzer, imagePath)
		if result == nil {
			result = models.ErrorResult(name, "analyzer returned no result")
		}
		if result.IsError() {
			p.log.Errorf("%s failed: %s", name, result.Error)
		} else {
			p.log.Infof("%s completed with status %s", name, result.Status)
		}
		results.Add(name, result)
	}

	p.log.Infof("pipeline completed, %d results", results.Len())
	return results
}

func (p *Pipeline) runOne(a Analyzer, imagePath string) (result *models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("panic in analyzer %s: %v", a.Name(), r)
			result = models.ErrorResult(a.Name(), fmt.Sprintf("internal fault: %v", r))
		}
	}()
	return a.Run(imagePath)
}
