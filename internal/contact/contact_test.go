package contact

import (
	"errors"
	"testing"
)

func TestValidEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":           true,
		"first.last@x.y.io": true,
		"a.com":             false,
		"a@b":               false,
		"a @b.com":          false,
		"":                  false,
		"a@@b.com":          false,
		"a@b.":              false,
	}
	for in, want := range cases {
		if got := ValidEmail(in); got != want {
			t.Errorf("ValidEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	err := Validate(Fields{Email: "a@b.com"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != ReasonMissingFields {
		t.Fatalf("unexpected reason %q", ve.Reason)
	}
	if len(ve.Fields) != 2 || ve.Fields[0] != FieldName || ve.Fields[1] != FieldMessage {
		t.Fatalf("unexpected fields %v", ve.Fields)
	}
	if got := ve.Error(); got != "missing fields: name, message" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestParseFieldKey(t *testing.T) {
	if k, err := ParseFieldKey(" Email "); err != nil || k != FieldEmail {
		t.Fatalf("ParseFieldKey: %v %v", k, err)
	}
	if _, err := ParseFieldKey("phone"); err == nil {
		t.Fatalf("expected error")
	}
}
