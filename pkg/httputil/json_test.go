package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]int{"n": 1})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"n":1}` {
		t.Errorf("body = %s", got)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    cgerrors.Code
		message string
	}{
		{
			name:    "coded",
			err:     cgerrors.New(cgerrors.ErrCodeGraphNotFound, "graph %s not found", "g1"),
			status:  http.StatusNotFound,
			code:    cgerrors.ErrCodeGraphNotFound,
			message: "graph g1 not found",
		},
		{
			name:    "wrapped coded",
			err:     fmt.Errorf("handler: %w", cgerrors.New(cgerrors.ErrCodeInvalidIndex, "bad index")),
			status:  http.StatusBadRequest,
			code:    cgerrors.ErrCodeInvalidIndex,
			message: "bad index",
		},
		{
			name:    "plain error is hidden",
			err:     fmt.Errorf("dial tcp 10.0.0.1: refused"),
			status:  http.StatusInternalServerError,
			code:    cgerrors.ErrCodeInternal,
			message: "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if got := WriteError(w, tt.err); got != tt.status {
				t.Errorf("WriteError returned %d, want %d", got, tt.status)
			}
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Code != tt.code || body.Error.Message != tt.message {
				t.Errorf("body = %+v", body.Error)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type req struct {
		Index int `json:"index"`
	}
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"valid", `{"index": 3}`, 3, false},
		{"empty", ``, 0, true},
		{"unknown field", `{"idx": 3}`, 0, true},
		{"wrong type", `{"index": "3"}`, 0, true},
		{"trailing value", `{"index": 1} {"index": 2}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v req
			err := DecodeJSON(r, &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if code := cgerrors.GetCode(err); code != cgerrors.ErrCodeInvalidInput {
					t.Errorf("code = %q", code)
				}
				return
			}
			if v.Index != tt.want {
				t.Errorf("Index = %d, want %d", v.Index, tt.want)
			}
		})
	}
}
