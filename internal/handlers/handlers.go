// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers of the blog API. Handlers
// decode requests, call the blog service and write JSON through render.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tagpress/internal/errs"
)

// maxFieldsSize caps JSON and urlencoded bodies.
const maxFieldsSize = 1 << 20

// urlParam returns a decoded chi URL parameter.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

// idParam parses a UUID URL parameter. A malformed ID reports the entity
// as not found.
func idParam(r *http.Request, key, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, errs.NotFound(entity)
	}
	return id, nil
}

// isJSON reports whether the request body is JSON.
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// readFields returns the string fields of a JSON object or form body.
func readFields(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, error) {
	fields := make(map[string]string, len(names))

	if isJSON(r) {
		var body map[string]any
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldsSize))
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, errs.Invalid("Request body is not valid JSON.")
		}
		for _, name := range names {
			switch v := body[name].(type) {
			case nil:
			case string:
				fields[name] = v
			default:
				return nil, errs.Invalid("Field " + name + " must be a string.")
			}
		}
		return fields, nil
	}

	for _, name := range names {
		fields[name] = r.FormValue(name)
	}
	return fields, nil
}

// optionalID parses an optional UUID form value. Empty and "no_category"
// mean none.
func optionalID(v, noneValue string) (*uuid.UUID, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == noneValue {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, false
	}
	return &id, true
}
