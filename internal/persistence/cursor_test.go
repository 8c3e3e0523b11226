package persistence

import (
	"testing"
	"time"

	"example.com/habits/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	day := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	token := EncodeCursor(&domain.Cursor{Date: day})
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decoded.Date.Equal(day) {
		t.Fatalf("expected %v got %v", day, decoded.Date)
	}
}

func TestCursorEmptyToken(t *testing.T) {
	if EncodeCursor(nil) != "" {
		t.Fatal("nil cursor should encode to empty token")
	}

	decoded, err := DecodeCursor("   ")
	if err != nil || decoded != nil {
		t.Fatalf("blank token should decode to nil, got %v %v", decoded, err)
	}
}

func TestCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"not-base64!!", "bm90IGEgZGF0ZQ=="} {
		if _, err := DecodeCursor(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}
