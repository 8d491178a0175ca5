// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// csrfCookie performs a GET through h and returns the issued token.
func csrfCookie(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/blog/", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("CSRF cookie not set")
	return ""
}

func TestNewCSRFCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		handler := NewCSRF(secure)(okHandler)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

		var found bool
		for _, c := range rr.Result().Cookies() {
			if c.Name != CSRFCookieName {
				continue
			}
			found = true
			if c.Secure != secure {
				t.Errorf("Secure: got %v, want %v", c.Secure, secure)
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite: got %v, want Strict", c.SameSite)
			}
			if len(c.Value) != 2*csrfTokenLength {
				t.Errorf("token length: got %d", len(c.Value))
			}
		}
		if !found {
			t.Error("CSRF cookie not set")
		}
	}
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	token := csrfCookie(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/blog/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "CSRF token mismatch") {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestCSRFAcceptsHeaderToken(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	token := csrfCookie(t, handler)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		req := httptest.NewRequest(method, "/blog/comments/1", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
		req.Header.Set(CSRFHeaderName, token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rr.Code)
		}
	}
}

func TestCSRFAcceptsFormFieldToken(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	token := csrfCookie(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/blog/", strings.NewReader(CSRFFormField+"="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestCSRFRejectsWrongToken(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	token := csrfCookie(t, handler)

	req := httptest.NewRequest(http.MethodDelete, "/blog/1", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
	req.Header.Set(CSRFHeaderName, strings.Repeat("0", len(token)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestCSRFSafeMethodsPassThrough(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(method, "/blog/", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rr.Code)
		}
	}
}

func TestCSRFTokenFromCtx(t *testing.T) {
	var ctxToken string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxToken = CSRFTokenFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/blog/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if ctxToken != "existing" {
		t.Errorf("context token: got %q, want the existing cookie value", ctxToken)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("an existing token must not be reissued")
	}
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("outside middleware: got %q", got)
	}
}
