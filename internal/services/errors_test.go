package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrTransport, "trakt", "fetch history", "page 3", base)

	if !errors.Is(err, ErrTransport) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "transport error: trakt: fetch history: page 3: connection refused"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransport(t *testing.T) {
	err := Wrap(nil, "trakt", "", "", nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport default, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	if !Fatal(Wrap(ErrAuthExpired, "trakt", "poll", "", nil)) {
		t.Error("auth expiry should be fatal")
	}
	if !Fatal(Wrap(ErrMalformedResponse, "trakt", "decode", "", nil)) {
		t.Error("malformed response should be fatal")
	}
	if Fatal(Wrap(ErrNoMatch, "mirror", "search", "", nil)) {
		t.Error("no-match should be record-local, not fatal")
	}
	if Fatal(Wrap(ErrTimeout, "mirror", "toggle", "", nil)) {
		t.Error("UI timeout should be record-local, not fatal")
	}
}
