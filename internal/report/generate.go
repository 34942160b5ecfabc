package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"testdeck/internal/config"
	"testdeck/pkg/logging"
)

// Report formats.
const (
	FormatHTML  = "html"
	FormatJSON  = "json"
	FormatJUnit = "junit"
	FormatPDF   = "pdf"
	FormatCSV   = "csv"
)

// SupportedFormats lists the formats Generate can render.
func SupportedFormats() []string {
	return []string{FormatHTML, FormatJSON, FormatJUnit}
}

// Options controls artifact generation.
type Options struct {
	Title              string
	Format             string
	Template           string // html layout: default, detailed, summary, executive
	Theme              string // html themes: light, dark, corporate
	IncludeCoverage    bool
	IncludePerformance bool
	OutputPath         string // explicit artifact path, empty to derive from OutputDir
	OutputDir          string
}

// Generate renders one artifact for the result and returns the written path.
// Formats that are advertised but not implemented fail loudly with an
// UnsupportedFormatError instead of silently degrading.
func Generate(result *TestRunResult, opts Options) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch opts.Format {
	case FormatJSON:
		data, err = json.MarshalIndent(result, "", "  ")
		ext = "json"
	case FormatJUnit:
		data, err = renderJUnit(result)
		ext = "xml"
	case FormatHTML:
		data, err = renderHTML(result, opts)
		ext = "html"
	case FormatPDF, FormatCSV:
		return "", &config.UnsupportedFormatError{Format: opts.Format, Supported: SupportedFormats()}
	default:
		return "", &config.UnsupportedFormatError{Format: opts.Format, Supported: SupportedFormats()}
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s report: %w", opts.Format, err)
	}

	path := opts.OutputPath
	if path == "" {
		dir := opts.OutputDir
		if dir == "" {
			dir = config.DefaultReportDir
		}
		path = filepath.Join(dir, artifactName(ext))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", &config.IOError{Op: "write", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &config.IOError{Op: "write", Path: path, Err: err}
	}

	logging.Info("Report", "Generated %s report: %s", opts.Format, path)
	return path, nil
}

func artifactName(ext string) string {
	return fmt.Sprintf("testdeck-report-%s.%s", time.Now().Format("20060102-150405"), ext)
}

// JUnit XML structures, matching the testsuites schema most CI systems ingest.
type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     float64          `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     float64         `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string        `xml:"name,attr"`
	Time    float64       `xml:"time,attr"`
	Failure *junitMessage `xml:"failure,omitempty"`
	Error   *junitMessage `xml:"error,omitempty"`
	Skipped *junitMessage `xml:"skipped,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr,omitempty"`
	Content string `xml:",chardata"`
}

func renderJUnit(result *TestRunResult) ([]byte, error) {
	doc := junitTestSuites{
		Name:     "testdeck",
		Tests:    result.TotalTests,
		Failures: result.Failures,
		Errors:   result.Errors,
		Skipped:  result.Skipped,
		Time:     result.Duration.Duration().Seconds(),
	}
	for _, suite := range result.Suites {
		js := junitTestSuite{
			Name:     suite.Name,
			Tests:    suite.Passed + suite.Failures + suite.Errors + suite.Skipped,
			Failures: suite.Failures,
			Errors:   suite.Errors,
			Skipped:  suite.Skipped,
			Time:     suite.Duration.Duration().Seconds(),
		}
		for _, tc := range suite.TestCases {
			jc := junitTestCase{
				Name: tc.Name,
				Time: tc.Duration.Duration().Seconds(),
			}
			switch tc.Status {
			case StatusFailed:
				jc.Failure = &junitMessage{Message: tc.Message, Content: tc.Stack}
			case StatusError:
				jc.Error = &junitMessage{Message: tc.Message, Content: tc.Stack}
			case StatusSkipped:
				jc.Skipped = &junitMessage{Message: tc.Message}
			}
			js.Cases = append(js.Cases, jc)
		}
		doc.Suites = append(doc.Suites, js)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
