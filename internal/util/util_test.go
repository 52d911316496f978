package util

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
	"time"
)

func TestHashPassword_AndVerifyPassword_OK(t *testing.T) {
	plain := "MyStrongPassword123!"

	hashed, err := HashPassword(plain)
	if err != nil {
		t.Fatalf("HashPassword err: %v", err)
	}
	if hashed == "" || hashed == plain {
		t.Fatalf("unexpected hash %q", hashed)
	}

	if err := VerifyPassword(plain, hashed); err != nil {
		t.Fatalf("VerifyPassword should succeed, got: %v", err)
	}
}

func TestVerifyPassword_WrongPassword_ReturnsError(t *testing.T) {
	hashed, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword err: %v", err)
	}

	if err := VerifyPassword("wrong-password", hashed); err == nil {
		t.Fatalf("expected error for wrong password, got nil")
	}
}

func TestVerifyPassword_InvalidHash_ReturnsError(t *testing.T) {
	if err := VerifyPassword("anything", "not-a-bcrypt-hash"); err == nil {
		t.Fatalf("expected error for invalid hash, got nil")
	}
}

func TestNewShareToken_LengthAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := NewShareToken()
		if err != nil {
			t.Fatalf("NewShareToken err: %v", err)
		}
		// 32 bytes -> 43 chars of unpadded base64url
		if len(tok) != 43 {
			t.Fatalf("token length = %d, want 43 (%q)", len(tok), tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestDecodeBase64Image_StripsDataURLPrefix(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeBase64Image(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64Image err: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("decoded = %v, want %v", got, raw)
	}
}

func TestDecodeBase64Image_BareBase64(t *testing.T) {
	raw := []byte("hello")
	got, err := DecodeBase64Image(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodeBase64Image err: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("decoded = %q, want %q", got, raw)
	}
}

func TestDecodeBase64Image_InvalidPayload(t *testing.T) {
	if _, err := DecodeBase64Image("%%%not base64%%%"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestImageDims_PNG(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	w, h := ImageDims(buf.Bytes())
	if w != 12 || h != 7 {
		t.Fatalf("dims = %dx%d, want 12x7", w, h)
	}
}

func TestImageDims_NotAnImage(t *testing.T) {
	w, h := ImageDims([]byte("plain text"))
	if w != 0 || h != 0 {
		t.Fatalf("dims = %dx%d, want 0x0", w, h)
	}
}

func TestSanitizePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Annual Survey  ", "annual_survey"},
		{"FIELD_TRIP", "field_trip"},
		{"A-B_C", "a-b_c"},
		{"weird!@#chars", "weirdchars"},
		{"", "unknown"},
		{"   ", "unknown"},
	}

	for _, tt := range tests {
		if got := SanitizePart(tt.in); got != tt.want {
			t.Fatalf("SanitizePart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtFromFilenameOrMime(t *testing.T) {
	if got := ExtFromFilenameOrMime("photo.PNG", ""); got != ".png" {
		t.Fatalf("got %q", got)
	}
	if got := ExtFromFilenameOrMime("", "image/png"); got != ".png" {
		t.Fatalf("got %q", got)
	}
	if got := ExtFromFilenameOrMime("", "image/webp"); got != ".webp" {
		t.Fatalf("got %q", got)
	}
	if got := ExtFromFilenameOrMime("", "application/octet-stream"); got != ".jpg" {
		t.Fatalf("got %q", got)
	}
}

func sptr(s string) *string { return &s }

func TestParseDateRange_DateOnlyEndIsInclusive(t *testing.T) {
	start, hasStart, end, hasEnd, err := ParseDateRange(sptr("2026-01-01"), sptr("2026-01-31"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !hasStart || !hasEnd {
		t.Fatalf("expected both bounds, got %v %v", hasStart, hasEnd)
	}
	if start != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start = %v", start)
	}
	if end != time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("end should be widened by a day, got %v", end)
	}
}

func TestParseDateRange_SwapsReversedBounds(t *testing.T) {
	start, _, end, _, err := ParseDateRange(sptr("2026-03-01"), sptr("2026-01-01"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !start.Before(end) {
		t.Fatalf("bounds not swapped: start=%v end=%v", start, end)
	}
}

func TestParseDateRange_InvalidFormat(t *testing.T) {
	if _, _, _, _, err := ParseDateRange(sptr("01/02/2026"), nil); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestParseDateRange_NilInputs(t *testing.T) {
	_, hasStart, _, hasEnd, err := ParseDateRange(nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if hasStart || hasEnd {
		t.Fatalf("expected no bounds")
	}
}
