package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixprobe/pkg/models"
)

type fakeAnalyzer struct {
	name   string
	result *models.AnalysisResult
	panics bool
}

func (f *fakeAnalyzer) Name() string    { return f.name }
func (f *fakeAnalyzer) Available() bool { return true }

func (f *fakeAnalyzer) Run(imagePath string) *models.AnalysisResult {
	if f.panics {
		panic("internal fault")
	}
	return f.result
}

func TestPipelineFaultIsolation(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&fakeAnalyzer{name: "first", result: okResult("first")})
	p.Register(&fakeAnalyzer{name: "second", panics: true})
	p.Register(&fakeAnalyzer{name: "third", result: okResult("third")})

	results := p.ExecuteAll("image.png")

	require.Equal(t, 3, results.Len())
	assert.Equal(t, models.StatusSuccess, results.Get("first").Status)
	assert.Equal(t, models.StatusError, results.Get("second").Status)
	assert.Contains(t, results.Get("second").Error, "internal fault")
	assert.Equal(t, models.StatusSuccess, results.Get("third").Status)
}

func TestPipelinePreservesRegistrationOrder(t *testing.T) {
	p := NewPipeline(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		p.Register(&fakeAnalyzer{name: name, result: okResult(name)})
	}

	results := p.ExecuteAll("image.png")
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, results.Order)
}

func TestPipelineSkipsDisabledAnalyzers(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&fakeAnalyzer{name: "kept", result: okResult("kept")})
	p.Register(&fakeAnalyzer{name: "dropped", result: okResult("dropped")})

	require.True(t, p.SetEnabled("dropped", false))

	results := p.ExecuteAll("image.png")
	assert.Equal(t, 1, results.Len())
	assert.Nil(t, results.Get("dropped"))
	assert.NotNil(t, results.Get("kept"))
}

func TestPipelineSetEnabledUnknownName(t *testing.T) {
	p := NewPipeline(nil)
	assert.False(t, p.SetEnabled("ghost", false))
}

func TestPipelineNilResultBecomesError(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&fakeAnalyzer{name: "broken", result: nil})

	results := p.ExecuteAll("image.png")
	require.Equal(t, 1, results.Len())
	assert.Equal(t, models.StatusError, results.Get("broken").Status)
}

func okResult(name string) *models.AnalysisResult {
	r := models.NewResult(name)
	r.SuspicionLevel = "Low"
	return r
}
