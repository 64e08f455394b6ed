package tap

import "github.com/abdul-hamid-achik/arduinotap/packages/stream"

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput sets the primary sink for TAP lines. nil means standard
// output.
func WithOutput(s stream.Stream) Option {
	return func(r *Reporter) {
		r.SetOutput(s)
	}
}

// WithFailureOutput sets the sink for failure detail. nil means standard
// output.
func WithFailureOutput(s stream.Stream) Option {
	return func(r *Reporter) {
		r.SetFailureOutput(s)
	}
}

// WithTodoOutput sets the sink for the detail of failed TODO assertions.
func WithTodoOutput(s stream.Stream) Option {
	return func(r *Reporter) {
		r.SetTodoOutput(s)
	}
}

// WithVersionHeader makes the first line of the run "TAP version 13".
func WithVersionHeader(v bool) Option {
	return func(r *Reporter) {
		r.versionHeader = v
	}
}

// WithYAMLDiagnostics adds a TAP 13 YAML block under every failed Is and
// Isnt line on the primary sink.
func WithYAMLDiagnostics(v bool) Option {
	return func(r *Reporter) {
		r.yamlDiagnostics = v
	}
}
