package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/arduinotap/packages/harness"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one TAP stream
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a test error
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped test
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter formats test results as JUnit XML
type JUnitFormatter struct {
	writer    io.Writer
	suiteName string
	testSuite *JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer:    os.Stdout,
		suiteName: "tap",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// JUnitWithSuiteName names the test suite, usually after the capture file
func JUnitWithSuiteName(name string) JUnitOption {
	return func(f *JUnitFormatter) {
		f.suiteName = name
	}
}

func (f *JUnitFormatter) FormatSummary(s *harness.Summary) {
	suite := JUnitTestSuite{
		Name:      f.suiteName,
		Tests:     s.Total(),
		Failures:  s.Failed,
		Skipped:   s.Skipped + s.Todo,
		Timestamp: time.Now().Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(s.Results)),
	}

	for _, r := range s.Results {
		tc := JUnitTestCase{
			Name:      fmt.Sprintf("%d - %s", r.Number, r.Name()),
			ClassName: f.suiteName,
		}

		switch {
		case r.Directive == harness.Skip || r.Directive == harness.TodoSkip:
			tc.Skipped = &JUnitSkipped{Message: r.Reason}
		case r.Directive == harness.Todo:
			tc.Skipped = &JUnitSkipped{Message: "TODO " + r.Reason}
		case !r.OK:
			tc.Failure = &JUnitFailure{
				Message: "Assertion failed",
				Type:    "AssertionError",
				Content: failureText(r),
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	// A bail out or a broken plan is an error of the run, not of a test.
	if s.Bailed {
		suite.Errors++
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      "bail out",
			ClassName: f.suiteName,
			Error:     &JUnitError{Message: s.BailReason, Type: "BailOut"},
		})
	} else if s.PlanMismatch {
		suite.Errors++
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      "plan",
			ClassName: f.suiteName,
			Error: &JUnitError{
				Message: fmt.Sprintf("planned %d tests but ran %d", s.Planned, s.Total()),
				Type:    "PlanMismatch",
			},
		})
	}

	f.testSuite = &suite
}

func (f *JUnitFormatter) FormatError(err error) {
	// Errors are included in individual test cases
}

func (f *JUnitFormatter) FormatHeader(version string) {
	// No header needed for JUnit XML
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	suites := JUnitTestSuites{
		Name:      "arduinotap",
		Time:      totalDuration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if f.testSuite != nil {
		f.testSuite.Time = totalDuration.Seconds()
		suites.Tests = f.testSuite.Tests
		suites.Failures = f.testSuite.Failures
		suites.Errors = f.testSuite.Errors
		suites.Skipped = f.testSuite.Skipped
		suites.TestSuites = []JUnitTestSuite{*f.testSuite}
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(suites)
}
