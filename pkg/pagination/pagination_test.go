package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", cursor.CreatedAt, parsed.CreatedAt)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("expected id %s, got %s", cursor.ID, parsed.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestParseCursorInvalid(t *testing.T) {
	for _, value := range []string{"not-base64!", "aGVsbG8=", "MjAyNHxub3QtYS11dWlk"} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("expected cap %d, got %d", MaxLimit, got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}
