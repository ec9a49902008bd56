package analysis_test

import (
	"testing"

	"github.com/texlet/texlet"
	"github.com/texlet/texlet/analysis"
)

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		input           string
		wantKinds       []texlet.SegmentKind
		wantDiagnostics int
		wantFailures    int
	}{
		{
			name:      "clean document",
			input:     "Iterate on $E = mc^2$ until it sticks.",
			wantKinds: []texlet.SegmentKind{texlet.SegText, texlet.SegInlineMath, texlet.SegText},
		},
		{
			name:      "empty document",
			input:     "",
			wantKinds: nil,
		},
		{
			name:            "broken math is reported",
			input:           `$a{b$`,
			wantKinds:       []texlet.SegmentKind{texlet.SegInlineMath},
			wantDiagnostics: 1,
			wantFailures:    1,
		},
		{
			name:            "unterminated tabular stays text and is reported",
			input:           `\begin{tabular}{cc} a & b`,
			wantKinds:       []texlet.SegmentKind{texlet.SegText},
			wantDiagnostics: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := analysis.NewAnalyzer(nil).Analyze("doc.tex", []byte(tt.input))

			if doc.Path != "doc.tex" {
				t.Errorf("Path = %q, want %q", doc.Path, "doc.tex")
			}

			if doc.Source != tt.input {
				t.Errorf("Source = %q, want %q", doc.Source, tt.input)
			}

			if doc.Render == nil || doc.SourceMap == nil {
				t.Fatalf("Render = %v, SourceMap = %v, want both set", doc.Render, doc.SourceMap)
			}

			var kinds []texlet.SegmentKind
			for _, seg := range doc.Segments {
				kinds = append(kinds, seg.Kind)
			}

			if len(kinds) != len(tt.wantKinds) {
				t.Fatalf("segment kinds = %v, want %v", kinds, tt.wantKinds)
			}

			for i, kind := range kinds {
				if kind != tt.wantKinds[i] {
					t.Errorf("segment %d kind = %v, want %v", i, kind, tt.wantKinds[i])
				}
			}

			if len(doc.Diagnostics) != tt.wantDiagnostics {
				t.Errorf("got %d diagnostics, want %d:", len(doc.Diagnostics), tt.wantDiagnostics)

				for _, d := range doc.Diagnostics {
					t.Logf("  %s: %s", d.Code, d.Message)
				}
			}

			if doc.Render.Failures != tt.wantFailures {
				t.Errorf("Failures = %d, want %d", doc.Render.Failures, tt.wantFailures)
			}
		})
	}
}

func TestAnalyzer_CustomRules(t *testing.T) {
	t.Parallel()

	probe := &analysis.Rule{
		Name:     "probe",
		Doc:      "Flags every document.",
		Severity: analysis.SeverityHint,
		Run: func(doc *analysis.Document) {
			doc.Diagnostics = append(doc.Diagnostics, analysis.Diagnostic{
				Severity: analysis.SeverityHint,
				Message:  "probe",
				Code:     "probe",
				Source:   "texlet",
			})
		},
	}

	analyzer := analysis.NewAnalyzerWithRules(nil, []*analysis.Rule{probe})
	doc := analyzer.Analyze("doc.tex", []byte(`$a{b$`))

	// Only the custom rule ran, so the broken math is not reported.
	if len(doc.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(doc.Diagnostics))
	}

	if doc.Diagnostics[0].Code != "probe" {
		t.Errorf("Code = %q, want %q", doc.Diagnostics[0].Code, "probe")
	}
}

func TestAnalyzer_SegmentsMatchScan(t *testing.T) {
	t.Parallel()

	input := "before $x$ after"
	doc := analysis.NewAnalyzer(nil).Analyze("doc.tex", []byte(input))

	var joined string
	for _, seg := range doc.Segments {
		joined += seg.Raw
	}

	if joined != input {
		t.Errorf("concatenated segments = %q, want %q", joined, input)
	}
}
