package tap

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"gopkg.in/yaml.v3"
)

type yamlDiagnostic struct {
	Message  string `yaml:"message,omitempty"`
	Severity string `yaml:"severity"`
	At       string `yaml:"at,omitempty"`
	Got      any    `yaml:"got"`
	Expected any    `yaml:"expected"`
}

// yamlBlock writes a TAP 13 YAML diagnostic block on the primary sink.
func (r *Reporter) yamlBlock(name string, loc Location, got, expected any) {
	diag := yamlDiagnostic{
		Message:  name,
		Severity: "fail",
		Got:      got,
		Expected: expected,
	}
	if !loc.IsZero() {
		diag.At = fmt.Sprintf("%s:%d", loc.File, loc.Line)
	}

	data, err := yaml.Marshal(diag)
	if err != nil {
		r.writeTo(r.out, commentLines("cannot encode diagnostics: "+err.Error()))
		return
	}

	var b strings.Builder
	b.WriteString("  ---\n")
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("  ...\n")
	r.writeTo(r.out, b.String())
}

// yamlValue keeps scalars typed in the YAML block and renders anything
// else as text.
func yamlValue(v any) any {
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	}
	return stream.Format(v)
}
