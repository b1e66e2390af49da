// Package reporting renders validation reports in CI-consumable formats.
package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/open-telco/telbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one validated submission.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
	SystemErr  string          `xml:"system-err,omitempty"`
}

// JUnitTestCase maps to one named validation check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a failed validation check.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a check that could not run against published data.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit renders a validation report as one JUnit suite with a test
// case per named check. CI systems ingest this shape to annotate submission
// PRs, so case names are the stable check names from [models.AllChecks].
func ConvertToJUnit(report *models.ValidationReport) *JUnitTestSuites {
	checks := models.AllChecks()
	suite := JUnitTestSuite{
		Name:      "submission",
		Tests:     len(checks),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "passed", Value: fmt.Sprintf("%t", report.Passed)},
			{Name: "errors", Value: fmt.Sprintf("%d", len(report.Errors))},
		},
		SystemErr: strings.Join(report.Errors, "\n"),
	}

	for _, check := range checks {
		tc := JUnitTestCase{Name: check, Classname: "validation"}
		switch {
		case !report.Checks[check]:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s failed", check),
				Type:    "ValidationFailure",
				Body:    checkFailureBody(report, check),
			}
			suite.Failures++
		case check == models.CheckSampleCountValid && sampleCountsSkipped(report):
			tc.Skipped = &JUnitSkipped{Message: "expected sample counts unavailable"}
			suite.Skipped++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// checkFailureBody summarizes a failed check. The report keeps one flat
// error list rather than per-check attribution, so sample-count failures get
// their per-benchmark detail and everything else points at the suite's
// system-err block.
func checkFailureBody(report *models.ValidationReport, check string) string {
	if check != models.CheckSampleCountValid {
		return "see system-err for the submission's error list"
	}
	var lines []string
	for name, d := range report.SampleDetails {
		if d.Valid || d.Skipped {
			continue
		}
		expected := "unknown"
		if d.Expected != nil {
			expected = fmt.Sprintf("%d", *d.Expected)
		}
		lines = append(lines, fmt.Sprintf("%s: expected %s samples, got %d", name, expected, d.Actual))
	}
	return strings.Join(lines, "\n")
}

// sampleCountsSkipped reports whether every benchmark's count check was
// skipped, which happens when the published counts could not be fetched.
func sampleCountsSkipped(report *models.ValidationReport) bool {
	if len(report.SampleDetails) == 0 {
		return false
	}
	for _, d := range report.SampleDetails {
		if !d.Skipped {
			return false
		}
	}
	return true
}

// WriteJUnitXML writes the report to path in JUnit XML format.
func WriteJUnitXML(report *models.ValidationReport, path string) error {
	suites := ConvertToJUnit(report)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
