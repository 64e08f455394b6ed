package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// Stream is a text sink.
type Stream interface {
	WriteString(s string) (int, error)
	Flush() error
}

// Char marks a value that should print as a single character rather than
// as its integer code.
type Char rune

// Format converts v to the text Print would write for it.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return val
	case Char:
		return string(rune(val))
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprintf("%v", v)
}

// formatFloat matches an ostream with default precision: six significant
// digits, no trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// Print writes v to s without a line break.
func Print(s Stream, v any) error {
	_, err := s.WriteString(Format(v))
	return err
}

// Println writes the values to s followed by a line break. With no values
// it writes only the line break.
func Println(s Stream, v ...any) error {
	var b strings.Builder
	for _, val := range v {
		b.WriteString(Format(val))
	}
	b.WriteByte('\n')
	_, err := s.WriteString(b.String())
	return err
}
