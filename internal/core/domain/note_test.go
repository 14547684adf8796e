package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateNoteFields(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{name: "minimal", title: "T", content: "C"},
		{name: "title at limit", title: strings.Repeat("t", 100), content: "C"},
		{name: "content at limit", title: "T", content: strings.Repeat("c", 5000)},
		{name: "multibyte title counted in characters", title: strings.Repeat("ñ", 100), content: "C"},
		{name: "empty title", title: "", content: "C", field: "title"},
		{name: "title 101", title: strings.Repeat("t", 101), content: "C", field: "title"},
		{name: "multibyte title 101", title: strings.Repeat("é", 101), content: "C", field: "title"},
		{name: "empty content", title: "T", content: "", field: "content"},
		{name: "content 5001", title: "T", content: strings.Repeat("c", 5001), field: "content"},
		{name: "NUL title", title: "\x00", content: "C", field: "title"},
		{name: "NUL inside title", title: "\x00T", content: "C", field: "title"},
		{name: "NUL inside content", title: "T", content: "\x00abc", field: "content"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNoteFields(tc.title, tc.content)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  U@Example.COM\t"); got != "u@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
