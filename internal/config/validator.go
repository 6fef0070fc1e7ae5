package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/analyzer-schema.json
var embeddedSchema []byte

const schemaURL = "https://canectors.io/schemas/spfanalyzer/v1.0.0/analyzer-schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// GetEmbeddedSchema returns the embedded configuration schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema compiles the embedded schema once.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
		if schemaInitErr != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", schemaInitErr)
		}
	})
	return compiledSchema, schemaInitErr
}

// ValidateConfig validates parsed configuration data against the schema.
// It returns nil when the data is valid.
func ValidateConfig(data map[string]interface{}) []ValidationError {
	if data == nil {
		return []ValidationError{{Path: "/", Type: "required", Message: "configuration data is nil"}}
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return []ValidationError{{Path: "/", Type: "schema", Message: fmt.Sprintf("failed to load schema: %v", err)}}
	}

	validationErr := schema.Validate(data)
	if validationErr == nil {
		return nil
	}

	var detailed *jsonschema.ValidationError
	if errors.As(validationErr, &detailed) {
		if errs := convertValidationErrors(detailed); len(errs) > 0 {
			return errs
		}
	}
	return []ValidationError{{Path: "/", Type: "validation", Message: validationErr.Error()}}
}

// convertValidationErrors flattens the leaf causes of a jsonschema error.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		return []ValidationError{{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(err.Error()),
			Message: err.Error(),
		}}
	}

	var errs []ValidationError
	for _, cause := range err.Causes {
		errs = append(errs, convertValidationErrors(cause)...)
	}
	return errs
}

// formatInstanceLocation formats the instance location as a JSON pointer.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// extractErrorType derives a short error type from the validation message.
func extractErrorType(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "additional properties") || strings.Contains(msg, "additionalproperties"):
		return "additionalProperties"
	case strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "value must be one of") || strings.Contains(msg, "enum"):
		return "enum"
	case strings.Contains(msg, "minlength") || strings.Contains(msg, "length must be"):
		return "length"
	case strings.Contains(msg, "got") && strings.Contains(msg, "want"):
		return "type"
	default:
		return "validation"
	}
}
