package event

import (
	"strings"
	"unicode"

	perrors "github.com/elevatehq/pulse/pkg/pulse/errors"
)

// validate checks the stamped envelope against the schema.
// Returns a ValidationError naming every violated field, or nil.
func validate(evt *Event) *perrors.ValidationError {
	var fields []string

	if evt.ID == "" {
		fields = append(fields, "id")
	}
	if !validEventType(evt.Type) {
		fields = append(fields, "type")
	}
	if evt.Source == "" {
		fields = append(fields, "source")
	}
	if evt.Timestamp.IsZero() {
		fields = append(fields, "timestamp")
	}
	if evt.Version == "" {
		fields = append(fields, "version")
	}

	if len(fields) == 0 {
		return nil
	}
	return &perrors.ValidationError{
		Fields:  fields,
		Message: "missing or malformed required fields",
	}
}

// validEventType reports whether t is a dot-namespaced type like
// "leave.request_submitted": at least two non-empty segments, no
// whitespace.
func validEventType(t string) bool {
	if t == "" || !strings.Contains(t, ".") {
		return false
	}
	for _, r := range t {
		if unicode.IsSpace(r) {
			return false
		}
	}
	for _, seg := range strings.Split(t, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}
