package form

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"research-hub-api/internal/apperrors"
)

const (
	FieldText        = "text"
	FieldTextarea    = "textarea"
	FieldEmail       = "email"
	FieldNumber      = "number"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldSelect      = "select"
	FieldMultiselect = "multiselect"
	FieldCheckbox    = "checkbox"
	FieldFile        = "file"
)

var fieldTypes = map[string]bool{
	FieldText:        true,
	FieldTextarea:    true,
	FieldEmail:       true,
	FieldNumber:      true,
	FieldDate:        true,
	FieldTime:        true,
	FieldSelect:      true,
	FieldMultiselect: true,
	FieldCheckbox:    true,
	FieldFile:        true,
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type FormField struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	Options   []string `json:"options,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
}

type FormSettings struct {
	SubmitLabel         string `json:"submit_label,omitempty"`
	ConfirmationMessage string `json:"confirmation_message,omitempty"`
}

type FormSchema struct {
	Fields   []FormField   `json:"fields"`
	Settings *FormSettings `json:"settings,omitempty"`
}

// ValidateFormSchema parses the raw schema document and checks its structure.
// The raw bytes are what gets stored; the parsed form is only used for
// validation so stored schemas round-trip untouched.
func ValidateFormSchema(raw []byte) (*FormSchema, error) {
	var schema FormSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, apperrors.NewValidation("schema is not valid JSON")
	}

	var details []string
	if len(schema.Fields) == 0 {
		details = append(details, "schema must define at least one field")
	}

	seen := map[string]bool{}
	for i, f := range schema.Fields {
		where := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(f.Key) == "" {
			details = append(details, where+": key is required")
		} else if seen[f.Key] {
			details = append(details, where+": duplicate key "+f.Key)
		} else {
			seen[f.Key] = true
		}
		if strings.TrimSpace(f.Label) == "" {
			details = append(details, where+": label is required")
		}
		if !fieldTypes[f.Type] {
			details = append(details, where+": unknown type "+f.Type)
		}
		if (f.Type == FieldSelect || f.Type == FieldMultiselect) && len(f.Options) == 0 {
			details = append(details, where+": "+f.Type+" requires options")
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			details = append(details, where+": min is greater than max")
		}
		if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
			details = append(details, where+": min_length is greater than max_length")
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidation("invalid form schema", details...)
	}
	return &schema, nil
}

// ValidateFormResponse checks submitted values against the schema and returns
// a sanitized copy containing only schema-known keys. Any failure rejects the
// whole submission.
func ValidateFormResponse(schema *FormSchema, data map[string]any) (map[string]any, error) {
	sanitized := make(map[string]any, len(schema.Fields))
	var details []string

	for _, f := range schema.Fields {
		raw, present := data[f.Key]
		if !present || raw == nil || isEmptyValue(raw) {
			if f.Required {
				details = append(details, f.Key+": value is required")
			}
			continue
		}

		val, err := validateFieldValue(f, raw)
		if err != "" {
			details = append(details, f.Key+": "+err)
			continue
		}
		sanitized[f.Key] = val
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidation("response does not match form schema", details...)
	}
	return sanitized, nil
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func validateFieldValue(f FormField, raw any) (any, string) {
	switch f.Type {
	case FieldText, FieldTextarea:
		s, ok := raw.(string)
		if !ok {
			return nil, "expected a string"
		}
		s = strings.TrimSpace(s)
		if f.MinLength != nil && len(s) < *f.MinLength {
			return nil, fmt.Sprintf("shorter than %d characters", *f.MinLength)
		}
		if f.MaxLength != nil && len(s) > *f.MaxLength {
			return nil, fmt.Sprintf("longer than %d characters", *f.MaxLength)
		}
		return s, ""

	case FieldEmail:
		s, ok := raw.(string)
		if !ok || !emailRe.MatchString(strings.TrimSpace(s)) {
			return nil, "not a valid email address"
		}
		return strings.TrimSpace(s), ""

	case FieldNumber:
		n, ok := numberValue(raw)
		if !ok {
			return nil, "expected a number"
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Sprintf("below minimum %v", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Sprintf("above maximum %v", *f.Max)
		}
		return n, ""

	case FieldDate:
		s, ok := raw.(string)
		if !ok {
			return nil, "expected a date string"
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, "expected YYYY-MM-DD"
		}
		return s, ""

	case FieldTime:
		s, ok := raw.(string)
		if !ok {
			return nil, "expected a time string"
		}
		if _, err := time.Parse("15:04", s); err != nil {
			return nil, "expected HH:MM"
		}
		return s, ""

	case FieldSelect:
		s, ok := raw.(string)
		if !ok || !containsOption(f.Options, s) {
			return nil, "not one of the allowed options"
		}
		return s, ""

	case FieldMultiselect:
		items, ok := raw.([]any)
		if !ok {
			return nil, "expected a list of options"
		}
		picked := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok || !containsOption(f.Options, s) {
				return nil, "contains a value outside the allowed options"
			}
			picked = append(picked, s)
		}
		return picked, ""

	case FieldCheckbox:
		b, ok := raw.(bool)
		if !ok {
			return nil, "expected true or false"
		}
		return b, ""

	case FieldFile:
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, "expected a file reference"
		}
		return s, ""
	}
	return nil, "unsupported field type"
}

func numberValue(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
