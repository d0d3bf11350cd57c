package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
)

func queryRequest(rawQuery string) *http.Request {
	return httptest.NewRequest("GET", "/inbox?"+rawQuery, nil)
}

func TestParseQueryInt(t *testing.T) {
	value, err := ParseQueryInt(queryRequest("limit=25"), "limit", 20, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 25 {
		t.Fatalf("expected 25, got %d", value)
	}

	value, err = ParseQueryInt(queryRequest(""), "limit", 20, 1, 100)
	if err != nil || value != 20 {
		t.Fatalf("expected default 20, got %d err %v", value, err)
	}

	if _, err = ParseQueryInt(queryRequest("limit=abc"), "limit", 20, 1, 100); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err = ParseQueryInt(queryRequest("limit=500"), "limit", 20, 1, 100); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestParseQueryBool(t *testing.T) {
	value, err := ParseQueryBool(queryRequest("unread=true"), "unread", false)
	if err != nil || !value {
		t.Fatalf("expected true, got %v err %v", value, err)
	}

	value, err = ParseQueryBool(queryRequest(""), "unread", true)
	if err != nil || !value {
		t.Fatalf("expected default true, got %v err %v", value, err)
	}

	if _, err = ParseQueryBool(queryRequest("unread=maybe"), "unread", false); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryTime(t *testing.T) {
	stamp := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	parsed, err := ParseQueryTime(queryRequest("since="+stamp.Format(time.RFC3339Nano)), "since")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(stamp) {
		t.Fatalf("expected %v, got %v", stamp, parsed)
	}

	parsed, err = ParseQueryTime(queryRequest("since=1714642200"), "since")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != time.Unix(1714642200, 0).UTC() {
		t.Fatalf("unexpected unix parse %v", parsed)
	}

	parsed, err = ParseQueryTime(queryRequest(""), "since")
	if err != nil || !parsed.IsZero() {
		t.Fatalf("expected zero time, got %v err %v", parsed, err)
	}

	if _, err = ParseQueryTime(queryRequest("since=yesterday"), "since"); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  blue backpack  ", 0); got != "blue backpack" {
		t.Fatalf("unexpected trim result %q", got)
	}
	if got := SanitizeString("abcdef", 4); got != "abcd" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
