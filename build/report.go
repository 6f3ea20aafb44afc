package build

import (
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/nanhai/arena/errors"
)

// Recognized test-suite package names and the report artifact each one
// produces.
const (
	PackageGoUT = "go_ut"
	PackagePyUT = "py_ut"

	xmlReportName  = "report.xml"
	jsonReportName = "report.json"
)

// ReportNameForPackage maps a recognized package name to its report
// file name. The second return is false for unrecognized packages.
func ReportNameForPackage(packageName string) (string, bool) {
	switch packageName {
	case PackageGoUT:
		return xmlReportName, true
	case PackagePyUT:
		return jsonReportName, true
	default:
		return "", false
	}
}

// xmlReport is the root element of a test-suite XML report. Attributes
// are pointers so a missing attribute is a parse error, not a zero.
type xmlReport struct {
	Tests    *int `xml:"tests,attr"`
	Failures *int `xml:"failures,attr"`
	Errors   *int `xml:"errors,attr"`
}

type jsonReport struct {
	Summary *struct {
		Passed *int `json:"passed"`
		Total  *int `json:"total"`
	} `json:"summary"`
}

// ParseReport extracts the passed-test count from a raw report body.
// The name's extension selects the format: .xml reports carry
// tests/failures/errors attributes on the root element and passed is
// tests minus failures minus errors; .json reports carry the count at
// summary.passed. Structurally invalid bodies are parse errors, which
// the poller treats as "not ready yet".
func ParseReport(name string, body []byte) (int, error) {
	switch {
	case strings.HasSuffix(name, ".xml"):
		return parseXMLReport(body)
	case strings.HasSuffix(name, ".json"):
		return parseJSONReport(body)
	default:
		return 0, errors.Newf("unrecognized report name %q", name)
	}
}

func parseXMLReport(body []byte) (int, error) {
	var report xmlReport
	if err := xml.Unmarshal(body, &report); err != nil {
		return 0, errors.Wrap(err, "failed to parse XML report")
	}
	if report.Tests == nil || report.Failures == nil || report.Errors == nil {
		return 0, errors.New("XML report missing tests/failures/errors attributes")
	}
	return *report.Tests - *report.Failures - *report.Errors, nil
}

func parseJSONReport(body []byte) (int, error) {
	var report jsonReport
	if err := json.Unmarshal(body, &report); err != nil {
		return 0, errors.Wrap(err, "failed to parse JSON report")
	}
	if report.Summary == nil || report.Summary.Passed == nil {
		return 0, errors.New("JSON report missing summary.passed")
	}
	return *report.Summary.Passed, nil
}
