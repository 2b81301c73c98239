package vk_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mlafeldt/xkcd-vk/vk"
)

func TestValidateSuccess(t *testing.T) {
	payload, err := vk.Validate([]byte(`{"response": {"upload_url": "http://up"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(payload["response"]); got != `{"upload_url": "http://up"}` {
		t.Errorf("response = %s", got)
	}
}

func TestValidateError(t *testing.T) {
	testdata := []struct {
		body string
		want *vk.APIError
	}{
		{`{"error": {"error_code": 100, "error_msg": "bad"}}`, &vk.APIError{Code: 100, Message: "bad"}},
		{`{"error": {"error_msg": "no code"}}`, &vk.APIError{Code: vk.UnknownErrorCode, Message: "no code"}},
		{`{"error": "ERR_UPLOAD_BAD_IMAGE_SIZE"}`, &vk.APIError{Code: vk.UnknownErrorCode, Message: "ERR_UPLOAD_BAD_IMAGE_SIZE"}},
		{`{"error": {"error_code": 5}}`, &vk.APIError{Code: 5, Message: "unknown error"}},
		{`{"error": ""}`, &vk.APIError{Code: vk.UnknownErrorCode, Message: "unknown error"}},
		{`{"error": null}`, &vk.APIError{Code: vk.UnknownErrorCode, Message: "unknown error"}},
	}

	for _, td := range testdata {
		payload, err := vk.Validate([]byte(td.body))
		if payload != nil {
			t.Errorf("%s: expected nil payload", td.body)
		}
		var apiErr *vk.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("%s: expected *APIError, got %v", td.body, err)
		}
		if diff := cmp.Diff(td.want, apiErr); diff != "" {
			t.Error(diff)
		}
	}
}

func TestValidateMalformed(t *testing.T) {
	_, err := vk.Validate([]byte("<html>"))
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *vk.APIError
	if errors.As(err, &apiErr) {
		t.Error("decode failure must not be reported as APIError")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	if got := (&vk.APIError{Code: 100, Message: "bad"}).Error(); got != "VK API error 100: bad" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&vk.APIError{Code: vk.UnknownErrorCode, Message: "bad"}).Error(); got != "VK API error: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAttachmentToken(t *testing.T) {
	if got := vk.AttachmentToken(-12345, 67); got != "photo-12345_67" {
		t.Errorf("AttachmentToken = %q, want photo-12345_67", got)
	}
	if got := vk.AttachmentToken(-500, 99); got != "photo-500_99" {
		t.Errorf("AttachmentToken = %q, want photo-500_99", got)
	}
}
