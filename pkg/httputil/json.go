package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	cgerrors "github.com/matzehuels/conceptgraph/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 8 << 20

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the code and a client-safe message.
type ErrorDetail struct {
	Code    cgerrors.Code `json:"code"`
	Message string        `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := cgerrors.HTTPStatus(err)
	detail := ErrorDetail{Code: cgerrors.GetCode(err), Message: cgerrors.UserMessage(err)}
	if detail.Code == "" {
		detail = ErrorDetail{Code: cgerrors.ErrCodeInternal, Message: "internal error"}
	}
	WriteJSON(w, status, ErrorBody{Error: detail})
	return status
}

// DecodeJSON reads a single JSON value from r's body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "request body is empty")
		}
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	if dec.More() {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "request body must hold a single JSON value")
	}
	return nil
}
