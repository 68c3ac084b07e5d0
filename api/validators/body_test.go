package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"omitempty,gte=1,lte=10"`
	Mode  string `json:"mode" validate:"omitempty,oneof=immediate aging"`
}

func decodeBody(t *testing.T, body string) (*samplePayload, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	return &payload, err
}

func TestDecodeJSONBody_ValidPayload(t *testing.T) {
	payload, err := decodeBody(t, `{"name":"red wine","count":3,"mode":"aging"}`)
	if err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if payload.Name != "red wine" || payload.Count != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeJSONBody_UnknownFieldRejected(t *testing.T) {
	_, err := decodeBody(t, `{"name":"x","bogus":true}`)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBody_MissingRequiredField(t *testing.T) {
	_, err := decodeBody(t, `{"count":3}`)
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected detail for name: %q", details["name"])
	}
}

func TestDecodeJSONBody_RangeAndEnumMessages(t *testing.T) {
	_, err := decodeBody(t, `{"name":"x","count":99,"mode":"frozen"}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["count"] != "must be at most 10" {
		t.Fatalf("unexpected count message: %q", details["count"])
	}
	if details["mode"] != "must be one of: immediate aging" {
		t.Fatalf("unexpected mode message: %q", details["mode"])
	}
}

func TestDecodeJSONBody_MalformedJSON(t *testing.T) {
	_, err := decodeBody(t, `{"name":`)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
