// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON request/response conventions for the API.
//
// Every user-initiated action responds with either the payload itself or a
// typed failure envelope {"success": false, "error": "..."} so callers are
// forced to handle the negative path explicitly. Policy rejections (see the
// membership package) travel through the same envelope with a user-facing
// reason, never a stack trace.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20 // 1 MiB

// Failure is the typed negative result for user-initiated actions.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Decode reads and decodes a JSON request body into dst. Unknown fields are
// ignored (forward compatibility with older clients).
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// Write encodes v as the response body with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	Write(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	Write(w, http.StatusCreated, v)
}

// Error writes a Failure envelope with the given status code and
// user-facing message.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Failure{Success: false, Error: msg})
}

// BadRequest writes a 400 Failure.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// Unauthorized writes a 401 Failure.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// Forbidden writes a 403 Failure.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "forbidden")
}

// NotFound writes a 404 Failure.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// ServerError writes a 500 Failure with a retryable message. Internal detail
// belongs in the log, not the response.
func ServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
