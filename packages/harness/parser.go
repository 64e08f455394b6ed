package harness

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Static regexes for TAP lines, compiled once.
var (
	versionRegex   = regexp.MustCompile(`^TAP version (\d+)\s*$`)
	planRegex      = regexp.MustCompile(`^1\.\.(\d+)\s*(?:#\s*(.*))?$`)
	resultRegex    = regexp.MustCompile(`^(not )?ok\b(?:\s+(\d+))?(?:\s*-)?\s*(.*)$`)
	bailRegex      = regexp.MustCompile(`^Bail out!\s*(.*)$`)
	directiveRegex = regexp.MustCompile(`(?i)^\s*(todo\s*&\s*skip|todo|skip\S*)(?:\s+(.*))?$`)
	skipAllRegex   = regexp.MustCompile(`(?i)^skip\S*(?:\s+(.*))?$`)
)

// maxLineSize bounds a single TAP line read by Parse.
const maxLineSize = 1024 * 1024

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock replaces time.Now for timing results.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

// Parser turns TAP lines into a Summary incrementally.
type Parser struct {
	summary *Summary
	now     func() time.Time
	lineNo  int

	// index of the result that comments and YAML attach to, or -1
	attach   int
	inYAML   bool
	yamlLead string
	yamlBuf  []string

	lastResultAt time.Time
	finalized    bool
}

// NewParser returns a Parser for one stream.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		summary: &Summary{
			RunID:   uuid.NewString(),
			Planned: -1,
			Timing:  NewTiming(),
		},
		now:    time.Now,
		attach: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastResultAt = p.now()
	return p
}

// Parse reads a whole TAP stream.
func Parse(r io.Reader, opts ...ParserOption) (*Summary, error) {
	p := NewParser(opts...)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.Feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return p.Summary(), fmt.Errorf("failed to read TAP stream: %w", err)
	}
	return p.Summary(), nil
}

// Feed consumes one line, with or without its line break.
func (p *Parser) Feed(line string) {
	p.lineNo++
	line = strings.TrimRight(line, "\r\n")

	if p.inYAML {
		p.feedYAML(line)
		return
	}

	s := p.summary
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return

	case trimmed == "---" && line != trimmed && p.attach >= 0:
		p.inYAML = true
		p.yamlLead = line[:strings.Index(line, "---")]
		p.yamlBuf = p.yamlBuf[:0]
		return

	case versionRegex.MatchString(line):
		m := versionRegex.FindStringSubmatch(line)
		s.Version, _ = strconv.Atoi(m[1])
		if p.lineNo != 1 {
			p.problem("version line is not the first line")
		}

	case planRegex.MatchString(line):
		p.feedPlan(planRegex.FindStringSubmatch(line))

	case resultRegex.MatchString(line):
		p.feedResult(resultRegex.FindStringSubmatch(line))
		return

	case bailRegex.MatchString(line):
		s.Bailed = true
		s.BailReason = strings.TrimSpace(bailRegex.FindStringSubmatch(line)[1])

	case strings.HasPrefix(line, "#"):
		comment := strings.TrimPrefix(line, "#")
		comment = strings.TrimPrefix(comment, " ")
		if p.attach >= 0 && !s.Results[p.attach].OK {
			s.Results[p.attach].Diagnostics = append(s.Results[p.attach].Diagnostics, comment)
			return
		}
		s.Diagnostics = append(s.Diagnostics, comment)
		return

	default:
		s.Unknown = append(s.Unknown, line)
	}
	p.attach = -1
}

func (p *Parser) feedPlan(m []string) {
	s := p.summary
	n, _ := strconv.Atoi(m[1])
	if s.Planned >= 0 {
		p.problem(fmt.Sprintf("plan declared again on line %d", p.lineNo))
		return
	}
	s.Planned = n
	if n == 0 {
		s.SkipAll = true
		if sm := skipAllRegex.FindStringSubmatch(strings.TrimSpace(m[2])); sm != nil {
			s.SkipAllReason = strings.TrimSpace(sm[1])
		}
	}
}

func (p *Parser) feedResult(m []string) {
	s := p.summary
	if s.Bailed {
		p.problem(fmt.Sprintf("result on line %d after Bail out!", p.lineNo))
	}

	expected := len(s.Results) + 1
	r := Result{
		OK:     m[1] == "",
		Number: expected,
		Line:   p.lineNo,
	}
	if m[2] != "" {
		r.Number, _ = strconv.Atoi(m[2])
		if r.Number != expected {
			p.problem(fmt.Sprintf("test %d out of sequence, expected %d", r.Number, expected))
		}
	}

	desc, dir := splitDirective(m[3])
	r.Description = unescape(strings.TrimSpace(desc))
	if dm := directiveRegex.FindStringSubmatch(dir); dm != nil {
		kind := strings.ToLower(dm[1])
		switch {
		case strings.HasPrefix(kind, "todo") && strings.Contains(kind, "skip"):
			r.Directive = TodoSkip
		case kind == "todo":
			r.Directive = Todo
		default:
			r.Directive = Skip
		}
		r.Reason = strings.TrimSpace(dm[2])
	} else if dir != "" {
		r.Description = unescape(strings.TrimSpace(m[3]))
	}

	switch r.Directive {
	case Skip, TodoSkip:
		s.Skipped++
	case Todo:
		s.Todo++
		if r.OK {
			s.TodoPassed++
		}
	default:
		if r.OK {
			s.Passed++
		} else {
			s.Failed++
		}
	}

	now := p.now()
	s.Timing.Record(now.Sub(p.lastResultAt))
	p.lastResultAt = now

	s.Results = append(s.Results, r)
	p.attach = len(s.Results) - 1
}

func (p *Parser) feedYAML(line string) {
	if strings.TrimSpace(line) == "..." {
		p.inYAML = false
		p.decodeYAML()
		return
	}
	p.yamlBuf = append(p.yamlBuf, strings.TrimPrefix(line, p.yamlLead))
}

func (p *Parser) decodeYAML() {
	if p.attach < 0 {
		return
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal([]byte(strings.Join(p.yamlBuf, "\n")), &doc); err != nil {
		p.problem(fmt.Sprintf("invalid YAML block before line %d: %v", p.lineNo, err))
		return
	}
	p.summary.Results[p.attach].YAML = doc
	for k, v := range doc {
		doc[k] = stringKeys(v)
	}
}

// stringKeys rewrites the map[any]any that yaml.v3 produces for mappings
// with non-string keys, so every decoded block can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	}
	return v
}

func (p *Parser) problem(msg string) {
	p.summary.Problems = append(p.summary.Problems, msg)
}

// Summary finishes the stream and returns what was learned. Feeding more
// lines afterwards is not supported.
func (p *Parser) Summary() *Summary {
	if p.finalized {
		return p.summary
	}
	p.finalized = true

	s := p.summary
	if p.inYAML {
		p.inYAML = false
		p.problem("unterminated YAML block")
		p.decodeYAML()
	}
	switch {
	case s.Planned >= 0:
		s.PlanMismatch = s.Planned != len(s.Results) && !s.Bailed
	case !s.Bailed:
		s.MissingPlan = true
	}
	return s
}

// splitDirective splits a result's text at the first unescaped #.
func splitDirective(text string) (desc, directive string) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '#':
			return text[:i], strings.TrimSpace(text[i+1:])
		}
	}
	return text, ""
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\#`, "#")
}
