package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

type sampleBody struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=5"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","name":"toolongname"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["email"] != "must be a valid email" || details["name"] != "must be at most 5 characters" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","extra":1}`))
	var body sampleBody
	if err := DecodeJSON(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"email":"a@b.co"}{"email":"c@d.co"}`,
		"syntax":   `{"email":`,
		"type":     `{"email":42}`,
		"oversize": `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body sampleBody
			if err := DecodeJSON(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims", "  hello  ", 0, "hello"},
		{"drops control characters", "he\x00llo\x1b", 0, "hello"},
		{"keeps newlines", "line one\nline two", 0, "line one\nline two"},
		{"truncates by rune", "héllo wörld", 5, "héllo"},
		{"normalizes", "e\u0301", 0, "\u00e9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input, tc.max); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
			}
		})
	}
}

func TestParseQueryFloat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?annual_revenue=2500000&bad=x", nil)
	if v, err := ParseQueryFloat(req, "annual_revenue", 1); err != nil || v != 2500000 {
		t.Fatalf("unexpected %v %v", v, err)
	}
	if v, err := ParseQueryFloat(req, "missing", 7); err != nil || v != 7 {
		t.Fatalf("expected default, got %v %v", v, err)
	}
	if _, err := ParseQueryFloat(req, "bad", 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := BearerToken(req); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	req.Header.Set("Authorization", "Bearer abc.def")
	if tok, err := BearerToken(req); err != nil || tok != "abc.def" {
		t.Fatalf("unexpected %q %v", tok, err)
	}
	req.Header.Set("Authorization", "raw-token")
	if tok, _ := BearerToken(req); tok != "raw-token" {
		t.Fatalf("unexpected %q", tok)
	}
}
