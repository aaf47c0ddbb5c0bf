package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, ""},
		{"decode", &NormalizationError{Filename: "a.jpg", Stage: "decode", Err: ErrDecode}, CategoryInvalidImage},
		{"encode", fmt.Errorf("wrap: %w", ErrEncode), CategoryInvalidImage},
		{"too large upload", &NormalizationError{Filename: "a.jpg", Stage: "read", Err: ErrImageTooLarge}, CategoryPayloadTooLarge},
		{"no images", ErrNoImages, CategoryInvalidRequest},
		{"organ", fmt.Errorf("%w: root", ErrInvalidOrgan), CategoryInvalidRequest},
		{"unauthorized", ErrRemoteUnauthorized, CategoryUnauthorized},
		{"rate limited", ErrRemoteRateLimited, CategoryRateLimited},
		{"payload", ErrRemotePayloadTooLarge, CategoryPayloadTooLarge},
		{"timeout", fmt.Errorf("%w: x", ErrRemoteTimeout), CategoryTimeout},
		{"connection", fmt.Errorf("%w: x", ErrRemoteConnection), CategoryConnection},
		{"status", &RemoteStatusError{StatusCode: 502}, CategoryRemoteError},
		{"unknown", errors.New("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Categorize(tt.err); got != tt.expected {
				t.Errorf("Categorize(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestUserMessage_DistinctPerRemoteCategory(t *testing.T) {
	t.Parallel()

	errs := []error{
		ErrRemoteUnauthorized, ErrRemoteRateLimited, ErrRemotePayloadTooLarge,
		ErrRemoteTimeout, ErrRemoteConnection, &RemoteStatusError{StatusCode: 500, Body: "x"},
	}
	seen := map[string]error{}
	for _, err := range errs {
		msg := UserMessage(err)
		if prev, ok := seen[msg]; ok {
			t.Errorf("message %q shared by %v and %v", msg, prev, err)
		}
		seen[msg] = err
	}
}

func TestUserMessage_ImageFailureNamesFile(t *testing.T) {
	t.Parallel()

	err := &NormalizationError{Filename: "oak.heic", Stage: "decode", Err: ErrDecode}
	if got := UserMessage(err); got != "Failed to process image file: oak.heic" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestUserMessage_PayloadTooLarge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			"remote 413 keeps the service limit",
			ErrRemotePayloadTooLarge,
			"Image file too large. Please use smaller images (max 5MB).",
		},
		{
			"local file limit",
			&NormalizationError{Filename: "a.jpg", Stage: "read", Err: &LimitError{Err: ErrImageTooLarge, Limit: 10 << 20, Actual: 12 << 20}},
			"Image file too large: a.jpg. Please use smaller images (max 10MB).",
		},
		{
			"local file limit without a known size",
			&NormalizationError{Filename: "a.jpg", Stage: "read", Err: ErrImageTooLarge},
			"Image file too large: a.jpg.",
		},
		{
			"pixel limit",
			&NormalizationError{Filename: "b.png", Stage: "decode", Err: &LimitError{Err: ErrTooManyPixels, Limit: 50_000_000, Actual: 256_000_000}},
			"Image dimensions too large: b.png. Please use images up to 50 megapixels.",
		},
		{
			"request body limit",
			&LimitError{Err: ErrRequestTooLarge, Limit: 50 << 20},
			"Upload too large. Please keep the total upload under 50MB.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Categorize(tt.err); got != CategoryPayloadTooLarge {
				t.Errorf("Categorize = %q, want %q", got, CategoryPayloadTooLarge)
			}
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLimitError(t *testing.T) {
	t.Parallel()

	err := &LimitError{Err: ErrImageTooLarge, Limit: 8, Actual: 9}
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("expected LimitError to unwrap to ErrImageTooLarge")
	}
	if errors.Is(err, ErrTooManyPixels) {
		t.Errorf("unexpected match with ErrTooManyPixels")
	}
	if got := err.Error(); got != "image exceeds upload size limit: 9 > 8" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		512:             "512 bytes",
		1024:            "1KB",
		300 * 1024:      "300KB",
		5 << 20:         "5MB",
		10 << 20:        "10MB",
		3<<20 + 512<<10: "3.5MB",
	}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatPixels(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		50_000_000: "50 megapixels",
		1_500_000:  "1500000 pixels",
		99:         "99 pixels",
	}
	for n, want := range tests {
		if got := FormatPixels(n); got != want {
			t.Errorf("FormatPixels(%d) = %q, want %q", n, got, want)
		}
	}
}
