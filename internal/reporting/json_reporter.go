package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the full audit result as indented JSON.
type JSONReporter struct {
	writer io.WriteCloser
}

// NewJSONReporter creates a JSONReporter. It takes ownership of the writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: writer}
}

// Write encodes the audit result to the underlying writer.
func (r *JSONReporter) Write(result *schemas.AuditResult) error {
	if result == nil {
		return fmt.Errorf("nil audit result")
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode audit result: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
