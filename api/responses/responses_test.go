package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/types"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return envelope
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWriteErrorMapsCodesToStatus(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "post not found"), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", pkgerrors.New(pkgerrors.CodeForbidden, "not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", pkgerrors.New(pkgerrors.CodeConflict, "duplicate claim"), http.StatusConflict, "CONFLICT"},
		{"rate limit", pkgerrors.New(pkgerrors.CodeRateLimit, "slow down"), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), logg, rec, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			envelope := decodeErrorBody(t, rec)
			if envelope.Error.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	envelope := decodeErrorBody(t, rec)
	if bytes.Contains([]byte(envelope.Error.Message), []byte("connection refused")) {
		t.Fatalf("internal detail leaked: %s", envelope.Error.Message)
	}
}

func TestWriteErrorKeepsClientMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeValidation, "item_name is required"))

	envelope := decodeErrorBody(t, rec)
	if envelope.Error.Message != "item_name is required" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}
