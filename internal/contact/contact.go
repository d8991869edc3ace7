// Package contact owns the contact form: field state, validation and a
// single-flight submission to the backend, with the result reported through an
// injected notifier.
package contact

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKey names one of the fixed form fields.
type FieldKey string

const (
	FieldName    FieldKey = "name"
	FieldEmail   FieldKey = "email"
	FieldMessage FieldKey = "message"
)

// ParseFieldKey maps a raw key to a FieldKey.
func ParseFieldKey(s string) (FieldKey, error) {
	switch k := FieldKey(strings.ToLower(strings.TrimSpace(s))); k {
	case FieldName, FieldEmail, FieldMessage:
		return k, nil
	default:
		return "", fmt.Errorf("unknown field %q", s)
	}
}

// Fields is the raw, unvalidated form input.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Status of a controller.
type Status int

const (
	Idle Status = iota
	Submitting
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// OutcomeKind classifies a settled submission.
type OutcomeKind string

const (
	ValidationRejected OutcomeKind = "validation_rejected"
	Accepted           OutcomeKind = "accepted"
	Rejected           OutcomeKind = "rejected"
)

// Outcome is the ephemeral result of Submit. Reason is set for
// ValidationRejected, Cause for Rejected.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Cause  error
}

// Rejection reasons surfaced by Validate.
const (
	ReasonMissingFields = "missing fields"
	ReasonInvalidEmail  = "invalid email"
)

// local@domain.tld shape only; no RFC 5322 parsing.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks fields before anything leaves the process. Fields only need
// to be non-empty; whitespace is not trimmed.
func Validate(f Fields) error {
	if f.Name == "" || f.Email == "" || f.Message == "" {
		return &ValidationError{Reason: ReasonMissingFields, Fields: missing(f)}
	}
	if !ValidEmail(f.Email) {
		return &ValidationError{Reason: ReasonInvalidEmail, Fields: []FieldKey{FieldEmail}}
	}
	return nil
}

func missing(f Fields) []FieldKey {
	var out []FieldKey
	if f.Name == "" {
		out = append(out, FieldName)
	}
	if f.Email == "" {
		out = append(out, FieldEmail)
	}
	if f.Message == "" {
		out = append(out, FieldMessage)
	}
	return out
}
