package analysis

import (
	"github.com/texlet/texlet/render"
)

// Analyzer runs the scan, render, and rule passes over scratchpad files.
type Analyzer struct {
	// math renders math fragments during the preview pass.
	// Can be nil to analyze with the default HTML markup renderer.
	math render.MathRenderer

	// rules is the set of checks to run.
	rules []*Rule
}

// NewAnalyzer creates a new analyzer with default rules.
// Pass nil for math to analyze with the HTML markup renderer.
func NewAnalyzer(math render.MathRenderer) *Analyzer {
	return &Analyzer{
		math:  math,
		rules: DefaultRules(),
	}
}

// NewAnalyzerWithRules creates an analyzer with custom rules.
func NewAnalyzerWithRules(math render.MathRenderer, rules []*Rule) *Analyzer {
	return &Analyzer{
		math:  math,
		rules: rules,
	}
}

// Analyze scans and renders a scratchpad file and runs all analysis rules.
func (a *Analyzer) Analyze(path string, content []byte) *Document {
	math := a.math
	if math == nil {
		math = render.KatexMarkup{}
	}

	doc := &Document{
		Path:        path,
		Source:      string(content),
		Diagnostics: []Diagnostic{},
	}

	// Scanning is total: every input yields a segmentation, so there is no
	// parse failure to report here. Problems surface as error nodes in the
	// render tree and as rule diagnostics.
	result := render.New(math).Render(doc.Source)
	doc.Segments = result.Segments
	doc.Render = result
	doc.SourceMap = result.Map()

	for _, rule := range a.rules {
		rule.Run(doc)
	}

	return doc
}
