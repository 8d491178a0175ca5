// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON responses and maps errors from the service
// layer to HTTP status codes.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tagpress/internal/errs"
	"tagpress/internal/middleware"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	Raw(w, status, body)
}

// Marshal encodes v the way JSON does, without escaping HTML characters.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Raw writes an already encoded JSON body.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// Error maps err to a status code and writes an ErrorBody. Unexpected
// errors are logged and reported as a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err, middleware.PrincipalFromCtx(r.Context()) != nil)
	msg := http.StatusText(status)

	var inputErr *errs.InputError
	switch {
	case errors.As(err, &inputErr):
		msg = inputErr.Msg
	case status == http.StatusNotFound:
		msg = notFoundMessage(err)
	case status == http.StatusUnauthorized:
		msg = "authentication required"
	case status == http.StatusForbidden:
		msg = "you are not allowed to do that"
	case status == http.StatusConflict:
		msg = "already exists"
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	JSON(w, status, ErrorBody{Error: msg, Status: status})
}

// StatusFor maps an error to an HTTP status. Permission failures are 401
// for anonymous requests and 403 for signed-in ones.
func StatusFor(err error, signedIn bool) int {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		if signedIn {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// notFoundMessage returns the innermost "<entity> not found" text.
func notFoundMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.Unwrap(e) == errs.ErrNotFound {
			return e.Error()
		}
	}
	return errs.ErrNotFound.Error()
}
