package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moonlitlabs/oneiro/internal/types"
)

// MaxTitleLength bounds the user-supplied dream title.
const MaxTitleLength = 100

// dreamDateLayout is the accepted backdate format (date only, no time).
const dreamDateLayout = "2006-01-02"

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateRequired returns an error if the value is empty or whitespace.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "must not be empty",
		}
	}
	return nil
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateCategory returns an error if the value is not a known category.
// An empty value is allowed; it defaults to "other" downstream.
func ValidateCategory(field, value string) *ValidationError {
	if value == "" {
		return nil
	}
	if !types.Category(value).Valid() {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unknown category %q", value),
		}
	}
	return nil
}

// ValidateLanguage returns an error if the value is not a supported language
// tag. An empty value is allowed; the configured default applies downstream.
func ValidateLanguage(field, value string) *ValidationError {
	switch value {
	case "", "en", "tr":
		return nil
	default:
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unsupported language %q", value),
		}
	}
}

// ValidateDreamDate returns an error if the value is not a YYYY-MM-DD date
// or lies in the future. An empty value is allowed; the server timestamp
// applies downstream.
func ValidateDreamDate(field, value string) *ValidationError {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(dreamDateLayout, value)
	if err != nil {
		return &ValidationError{
			Field:   field,
			Message: "must be a YYYY-MM-DD date",
		}
	}
	if parsed.After(time.Now().UTC()) {
		return &ValidationError{
			Field:   field,
			Message: "must not be in the future",
		}
	}
	return nil
}

// ValidateCreateDreamRequest checks all fields of a create request.
func ValidateCreateDreamRequest(req types.CreateDreamRequest) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("title", req.Title))
	c.Add(ValidateUTF8("title", req.Title))
	c.Add(ValidateNoNullBytes("title", req.Title))
	c.Add(ValidateMaxLength("title", req.Title, MaxTitleLength))

	c.Add(ValidateRequired("content", req.Content))
	c.Add(ValidateUTF8("content", req.Content))
	c.Add(ValidateNoNullBytes("content", req.Content))

	c.Add(ValidateCategory("category", req.Category))
	c.Add(ValidateLanguage("language", req.Language))
	c.Add(ValidateDreamDate("dream_date", req.DreamDate))

	return c.Errors()
}
