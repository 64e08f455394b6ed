package config

import (
	"errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema config files must satisfy.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "arduinotap configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "output": {"type": "string", "enum": ["console", "json", "junit", "tap"]},
    "outputFile": {"type": "string"},
    "noColor": {"type": "boolean"},
    "strict": {"type": "boolean"},
    "allowTodoPass": {"type": "boolean"},
    "baud": {"type": "integer", "minimum": 0},
    "tapVersion": {"type": "boolean"},
    "yamlDiagnostics": {"type": "boolean"},
    "watchDebounce": {"type": "integer", "minimum": 0}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks a decoded config document against Schema and joins
// every violation into one error.
func Validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
