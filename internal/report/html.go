package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig/v3"
)

// HTML themes.
const (
	ThemeLight     = "light"
	ThemeDark      = "dark"
	ThemeCorporate = "corporate"
)

// HTML layouts selectable with the --template flag.
const (
	LayoutDefault   = "default"
	LayoutDetailed  = "detailed"
	LayoutSummary   = "summary"
	LayoutExecutive = "executive"
)

// SupportedLayouts lists the layouts renderHTML accepts.
func SupportedLayouts() []string {
	return []string{LayoutDefault, LayoutDetailed, LayoutSummary, LayoutExecutive}
}

var themePalettes = map[string]themePalette{
	ThemeLight:     {Background: "#ffffff", Text: "#1f2328", Accent: "#0969da", Muted: "#f6f8fa"},
	ThemeDark:      {Background: "#0d1117", Text: "#e6edf3", Accent: "#58a6ff", Muted: "#161b22"},
	ThemeCorporate: {Background: "#f4f6f8", Text: "#15304b", Accent: "#00695c", Muted: "#e1e8ed"},
}

type themePalette struct {
	Background string
	Text       string
	Accent     string
	Muted      string
}

type htmlContext struct {
	Title              string
	Theme              themePalette
	Result             *TestRunResult
	SuccessRate        float64
	IncludeCoverage    bool
	IncludePerformance bool
}

// The layout templates share a head, a summary strip, and a footer; they
// differ in how much suite and test case detail sits in between.
const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: -apple-system, sans-serif; background: {{ .Theme.Background }}; color: {{ .Theme.Text }}; margin: 2rem; }
h1 { color: {{ .Theme.Accent }}; }
h2 { margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { padding: 0.5rem 0.75rem; text-align: left; border-bottom: 1px solid {{ .Theme.Muted }}; }
th { background: {{ .Theme.Muted }}; }
pre { background: {{ .Theme.Muted }}; padding: 0.5rem; overflow-x: auto; }
.summary { display: flex; gap: 2rem; margin: 1rem 0; }
.metric { background: {{ .Theme.Muted }}; padding: 1rem; border-radius: 6px; }
.metric .value { font-size: 1.6rem; font-weight: 600; }
.pass { color: #1a7f37; } .fail { color: #cf222e; } .skip { color: #9a6700; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
<p>Run at {{ .Result.Timestamp.Format "2006-01-02 15:04:05 MST" }}, duration {{ .Result.Duration.Duration }}</p>
`

const htmlSummary = `<div class="summary">
  <div class="metric"><div class="value">{{ .Result.TotalTests }}</div>total</div>
  <div class="metric"><div class="value pass">{{ .Result.Passed }}</div>passed</div>
  <div class="metric"><div class="value fail">{{ add .Result.Failures .Result.Errors }}</div>failed</div>
  <div class="metric"><div class="value">{{ .Result.Skipped }}</div>skipped</div>
  <div class="metric"><div class="value">{{ printf "%.1f%%" .SuccessRate }}</div>success rate</div>
</div>
`

const htmlSuiteTable = `<table>
<tr><th>Suite</th><th>Passed</th><th>Failed</th><th>Errors</th><th>Skipped</th><th>Duration</th></tr>
{{- range .Result.Suites }}
<tr>
  <td>{{ .Name }}</td>
  <td class="pass">{{ .Passed }}</td>
  <td{{ if gt .Failures 0 }} class="fail"{{ end }}>{{ .Failures }}</td>
  <td{{ if gt .Errors 0 }} class="fail"{{ end }}>{{ .Errors }}</td>
  <td>{{ .Skipped }}</td>
  <td>{{ .Duration.Duration }}</td>
</tr>
{{- end }}
</table>
`

const htmlSuiteCases = `{{- range .Result.Suites }}
<h2>{{ .Name }}</h2>
<p>{{ .Passed }} passed, {{ .Failures }} failed, {{ .Errors }} errors, {{ .Skipped }} skipped in {{ .Duration.Duration }}</p>
{{- if .TestCases }}
<table>
<tr><th>Test</th><th>Status</th><th>Duration</th></tr>
{{- range .TestCases }}
<tr>
  <td>{{ .Name }}</td>
  <td class="{{ statusClass .Status }}">{{ .Status }}</td>
  <td>{{ .Duration.Duration }}</td>
</tr>
{{- end }}
</table>
{{- end }}
{{- end }}
`

const htmlSuiteCasesVerbose = `{{- range .Result.Suites }}
<h2>{{ .Name }}</h2>
<p>{{ .Passed }} passed, {{ .Failures }} failed, {{ .Errors }} errors, {{ .Skipped }} skipped in {{ .Duration.Duration }}</p>
{{- if .TestCases }}
<table>
<tr><th>Test</th><th>Status</th><th>Duration</th><th>Message</th></tr>
{{- range .TestCases }}
<tr>
  <td>{{ .Name }}</td>
  <td class="{{ statusClass .Status }}">{{ .Status }}</td>
  <td>{{ .Duration.Duration }}</td>
  <td>{{ .Message }}</td>
</tr>
{{- if .Stack }}
<tr><td colspan="4"><pre>{{ .Stack }}</pre></td></tr>
{{- end }}
{{- end }}
</table>
{{- end }}
{{- end }}
`

const htmlVerdict = `<p class="{{ if .Result.Success }}pass{{ else }}fail{{ end }}">
{{- if .Result.Success }}All suites passed.{{ else }}This run had failing suites.{{ end }}</p>
`

const htmlFoot = `{{- if .IncludeCoverage }}
<p>Coverage collection was enabled for this run.</p>
{{- end }}
</body>
</html>
`

var layoutTemplates = map[string]string{
	LayoutDefault:   htmlHead + htmlSummary + htmlSuiteTable + htmlSuiteCases + htmlFoot,
	LayoutDetailed:  htmlHead + htmlSummary + htmlSuiteTable + htmlSuiteCasesVerbose + htmlFoot,
	LayoutSummary:   htmlHead + htmlSummary + htmlSuiteTable + htmlFoot,
	LayoutExecutive: htmlHead + htmlSummary + htmlVerdict + htmlFoot,
}

func statusClass(status string) string {
	switch status {
	case StatusPassed:
		return "pass"
	case StatusSkipped:
		return "skip"
	default:
		return "fail"
	}
}

const comparisonTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Report Comparison</title>
<style>
body { font-family: -apple-system, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { padding: 0.5rem 0.75rem; text-align: right; border-bottom: 1px solid #ddd; }
th:first-child, td:first-child { text-align: left; }
.up { color: #1a7f37; } .down { color: #cf222e; }
</style>
</head>
<body>
<h1>Report Comparison</h1>
<table>
<tr><th>Metric</th><th>Baseline</th><th>Current</th><th>Change</th></tr>
<tr><td>Total tests</td><td>{{ .Baseline.TotalTests }}</td><td>{{ .Current.TotalTests }}</td><td>{{ .Changes.TotalTests }}</td></tr>
<tr><td>Passed</td><td>{{ .Baseline.Passed }}</td><td>{{ .Current.Passed }}</td><td{{ if gt .Changes.Passed 0 }} class="up"{{ else if lt .Changes.Passed 0 }} class="down"{{ end }}>{{ .Changes.Passed }}</td></tr>
<tr><td>Failures</td><td>{{ .Baseline.Failures }}</td><td>{{ .Current.Failures }}</td><td{{ if gt .Changes.Failures 0 }} class="down"{{ else if lt .Changes.Failures 0 }} class="up"{{ end }}>{{ .Changes.Failures }}</td></tr>
<tr><td>Errors</td><td>{{ .Baseline.Errors }}</td><td>{{ .Current.Errors }}</td><td>{{ .Changes.Errors }}</td></tr>
<tr><td>Skipped</td><td>{{ .Baseline.Skipped }}</td><td>{{ .Current.Skipped }}</td><td>{{ .Changes.Skipped }}</td></tr>
<tr><td>Success rate</td><td>{{ printf "%.1f%%" .Baseline.SuccessRate }}</td><td>{{ printf "%.1f%%" .Current.SuccessRate }}</td><td>{{ printf "%+.1f%%" .Changes.SuccessRate }}</td></tr>
</table>
</body>
</html>
`

// RenderComparisonHTML renders a comparison as a self-contained HTML document.
func RenderComparisonHTML(cmp *Comparison) ([]byte, error) {
	tmpl, err := template.New("comparison").Funcs(sprig.FuncMap()).Parse(comparisonTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cmp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderHTML renders the result through one of the named layouts. An empty
// layout name selects the default.
func renderHTML(result *TestRunResult, opts Options) ([]byte, error) {
	layout := opts.Template
	if layout == "" {
		layout = LayoutDefault
	}
	source, ok := layoutTemplates[layout]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (supported: %s)", layout, strings.Join(SupportedLayouts(), ", "))
	}

	funcs := sprig.FuncMap()
	funcs["statusClass"] = statusClass
	tmpl, err := template.New(layout).Funcs(funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", layout, err)
	}

	theme := opts.Theme
	if theme == "" {
		theme = ThemeLight
	}
	palette, ok := themePalettes[theme]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (supported: %s, %s, %s)", theme, ThemeLight, ThemeDark, ThemeCorporate)
	}

	title := opts.Title
	if title == "" {
		title = "Test Report"
	}

	ctx := htmlContext{
		Title:              title,
		Theme:              palette,
		Result:             result,
		SuccessRate:        result.SuccessRate(),
		IncludeCoverage:    opts.IncludeCoverage,
		IncludePerformance: opts.IncludePerformance,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", layout, err)
	}
	return buf.Bytes(), nil
}
