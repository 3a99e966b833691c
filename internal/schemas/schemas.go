// Package schemas validates incoming webhook payloads against embedded JSON
// Schemas before they are decoded, so malformed bodies are rejected with a
// field-level error instead of silently producing zero values.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var schemaFiles embed.FS

// Schema names accepted by Validate.
const (
	CallCallback  = "call_callback"
	VideoCallback = "video_callback"
)

// ValidationError reports which fields of a payload failed validation.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

var compiled = map[string]*gojsonschema.Schema{}

func init() {
	for _, name := range []string{CallCallback, VideoCallback} {
		content, err := schemaFiles.ReadFile(name + ".json")
		if err != nil {
			panic(fmt.Sprintf("embedded schema %s missing: %v", name, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(content))
		if err != nil {
			panic(fmt.Sprintf("embedded schema %s invalid: %v", name, err))
		}
		compiled[name] = schema
	}
}

// Validate checks a raw JSON body against the named embedded schema. A nil
// return means the body is well-formed JSON matching the schema; a
// *ValidationError describes field-level failures; any other error means the
// body was not parseable JSON at all.
func Validate(name string, body []byte) error {
	schema, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema: %s", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
