package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
)

type sampleRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	PackageID int64  `json:"package_id" validate:"required,gt=0"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"nope","package_id":-1}`))
	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["user_id"] != "must be a valid uuid" {
		t.Fatalf("user_id detail: %q", details["user_id"])
	}
	if details["package_id"] != "must be greater than 0" {
		t.Fatalf("package_id detail: %q", details["package_id"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"5b1f0c8e-4f4e-4f65-9b8f-7f3b6c1e2d10","package_id":1,"extra":true}`))
	var dest sampleRequest
	if err := DecodeJSONBody(req, &dest); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"5b1f0c8e-4f4e-4f65-9b8f-7f3b6c1e2d10","package_id":3}`))
	var dest sampleRequest
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.PackageID != 3 {
		t.Fatalf("unexpected package id %d", dest.PackageID)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingData(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"user_id":"5b1f0c8e-4f4e-4f65-9b8f-7f3b6c1e2d10","package_id":3}{"package_id":4}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var dest sampleRequest
			if err := DecodeJSONBody(req, &dest); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
