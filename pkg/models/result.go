package models

// Status values an analyzer can report. Anything other than StatusError is a
// defined terminal outcome, not a failure.
const (
	StatusSuccess              = "success"
	StatusError                = "error"
	StatusNotImplemented       = "not_implemented"
	StatusInsufficientFeatures = "insufficient_features"
	StatusNotApplicable        = "not_applicable"
	StatusToolUnavailable      = "tool_unavailable"
)

// AnalysisResult contains the outcome of one analyzer run over one image.
// It is produced once per run and never mutated after being returned.
type AnalysisResult struct {
	Analyzer       string                 `json:"analyzer"`
	Status         string                 `json:"status"`
	Error          string                 `json:"error,omitempty"`
	SuspicionScore float64                `json:"suspicionScore"`
	SuspicionLevel string                 `json:"suspicionLevel,omitempty"`
	Interpretation string                 `json:"interpretation,omitempty"`
	Artifacts      []string               `json:"artifacts,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// NewResult creates a result shell for the named analyzer.
func NewResult(analyzer string) *AnalysisResult {
	return &AnalysisResult{
		Analyzer: analyzer,
		Status:   StatusSuccess,
		Details:  make(map[string]interface{}),
	}
}

// ErrorResult creates a terminal error result with the given message.
func ErrorResult(analyzer, message string) *AnalysisResult {
	return &AnalysisResult{
		Analyzer: analyzer,
		Status:   StatusError,
		Error:    message,
	}
}

// AddArtifact records the path of a generated visualization image.
func (r *AnalysisResult) AddArtifact(path string) {
	r.Artifacts = append(r.Artifacts, path)
}

// SetDetail stores a named detail value on the result.
func (r *AnalysisResult) SetDetail(key string, value interface{}) {
	if r.Details == nil {
		r.Details = make(map[string]interface{})
	}
	r.Details[key] = value
}

// IsError reports whether the result represents a failure rather than a
// defined non-error outcome.
func (r *AnalysisResult) IsError() bool {
	return r.Status == StatusError || r.Status == StatusToolUnavailable
}

// PipelineResult maps analyzer names to their results for a single run.
// Order preserves analyzer registration order but carries no semantic weight.
type PipelineResult struct {
	Order   []string
	Results map[string]*AnalysisResult
}

// NewPipelineResult creates an empty result set.
func NewPipelineResult() *PipelineResult {
	return &PipelineResult{Results: make(map[string]*AnalysisResult)}
}

// Add records a result under the analyzer's name, keeping insertion order.
func (p *PipelineResult) Add(name string, result *AnalysisResult) {
	if _, exists := p.Results[name]; !exists {
		p.Order = append(p.Order, name)
	}
	p.Results[name] = result
}

// Get returns the result for the named analyzer, or nil.
func (p *PipelineResult) Get(name string) *AnalysisResult {
	return p.Results[name]
}

// Len returns the number of recorded results.
func (p *PipelineResult) Len() int {
	return len(p.Order)
}
