package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestParseLegacyEncoding(t *testing.T) {
	err := Parse("User not found!|||404")
	if err.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", err.Status)
	}
	if err.Message != "User not found!" {
		t.Fatalf("unexpected message %q", err.Message)
	}

	plain := Parse("boom")
	if plain.Status != http.StatusInternalServerError || plain.Message != "boom" {
		t.Fatalf("unexpected fallback %+v", plain)
	}

	bad := Parse("odd|||status")
	if bad.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for non numeric status, got %d", bad.Status)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := Forbidden("User suspended!")
	out := Parse(in.Encode())
	if out.Status != in.Status || out.Message != in.Message {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("login: %w", Unauthorized("Invalid password!"))
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", StatusOf(err))
	}
	if !Is(err, http.StatusUnauthorized) {
		t.Fatal("expected Is to match wrapped error")
	}
	if StatusOf(fmt.Errorf("plain")) != http.StatusInternalServerError {
		t.Fatal("expected 500 for untyped error")
	}
}
