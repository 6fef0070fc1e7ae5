package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses and validates a configuration file. The format is taken
// from the file extension (.json, .yaml, .yml) or detected from content.
func ParseFile(path string) *Result {
	result := &Result{FilePath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := ParseString(string(content), DetectFormat(path))
	parsed.FilePath = path
	for i := range parsed.ParseErrors {
		if parsed.ParseErrors[i].Path == "" {
			parsed.ParseErrors[i].Path = path
		}
	}
	return parsed
}

// ParseString parses and validates configuration content. If format is
// empty it is detected from the content.
func ParseString(content, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		switch {
		case IsJSON(content):
			format = FormatJSON
		case IsYAML(content):
			format = FormatYAML
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect configuration format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
		result.Format = format
	}

	var (
		data     map[string]interface{}
		parseErr *ParseError
	)
	switch format {
	case FormatJSON:
		data, parseErr = parseJSON(content)
	case FormatYAML:
		data, parseErr = parseYAML(content)
	default:
		parseErr = &ParseError{Message: fmt.Sprintf("unsupported format: %s", format), Type: ErrorTypeFormat}
	}
	if parseErr != nil {
		result.ParseErrors = append(result.ParseErrors, *parseErr)
		return result
	}

	result.Data = data
	result.ValidationErrors = ValidateConfig(data)
	return result
}

// DetectFormat detects the configuration format from the file extension.
// Returns "json", "yaml", or empty string if format cannot be detected.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be a JSON object.
func IsJSON(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "{")
}

// IsYAML checks if the content parses as a non-empty YAML document.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	return yaml.Unmarshal([]byte(content), &data) == nil && data != nil
}

func parseJSON(content string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Message: "empty content: expected JSON object", Type: ErrorTypeSyntax}
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		parseErr := &ParseError{Message: err.Error(), Type: ErrorTypeSyntax}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
			parseErr.Message = fmt.Sprintf("JSON syntax error: %s", syntaxErr.Error())
		}
		return nil, parseErr
	}
	return asObject(data, "JSON object")
}

func parseYAML(content string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Message: "empty content: expected YAML document", Type: ErrorTypeSyntax}
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		parseErr := &ParseError{Message: err.Error(), Type: ErrorTypeSyntax}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
		}
		// yaml.v3 reports locations as "yaml: line N: ..."
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			parseErr.Line = line
		}
		return nil, parseErr
	}
	return asObject(data, "YAML mapping")
}

func asObject(data interface{}, expected string) (map[string]interface{}, *ParseError) {
	if data == nil {
		// An empty document configures nothing.
		return map[string]interface{}{}, nil
	}
	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid configuration: expected %s, got %T", expected, data),
			Type:    ErrorTypeFormat,
		}
	}
	return obj, nil
}

// offsetToLineColumn converts a byte offset to line and column numbers (1-based).
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}
