// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"tagpress/internal/models"
	"tagpress/internal/session"
)

// newTestSession creates a session.Data with the given role and 2FA state.
func newTestSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@tagpress.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

func withSession(r *http.Request, sess *session.Data) *http.Request {
	if sess == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), SessionKey, sess))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession("staff", true)
		ctx := context.WithValue(context.Background(), SessionKey, sess)
		if got := SessionFromCtx(ctx); got != sess {
			t.Errorf("got %p, want %p", got, sess)
		}
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not a session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestPrincipalFromCtx(t *testing.T) {
	if p := PrincipalFromCtx(context.Background()); p != nil {
		t.Errorf("anonymous: got %+v", p)
	}

	pending := newTestSession("staff", false)
	ctx := context.WithValue(context.Background(), SessionKey, pending)
	if p := PrincipalFromCtx(ctx); p != nil {
		t.Errorf("staff before 2FA: got %+v, want nil", p)
	}

	sess := newTestSession("superuser", true)
	ctx = context.WithValue(context.Background(), SessionKey, sess)
	p := PrincipalFromCtx(ctx)
	if p == nil || p.ID != sess.UserID || p.Role != models.RoleSuperuser || !p.Authenticated {
		t.Errorf("got %+v", p)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(okHandler)

	t.Run("rejects anonymous with JSON 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/blog/", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
			t.Errorf("Content-Type: got %q", rr.Header().Get("Content-Type"))
		}
		if !strings.Contains(rr.Body.String(), "authentication required") {
			t.Errorf("body: got %q", rr.Body.String())
		}
	})

	t.Run("passes signed-in users", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/blog/", nil), newTestSession("reader", true))
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})
}

func TestRequire2FA(t *testing.T) {
	tests := []struct {
		name       string
		session    *session.Data
		wantStatus int
	}{
		{"staff without 2FA is rejected", newTestSession("staff", false), http.StatusForbidden},
		{"superuser without 2FA is rejected", newTestSession("superuser", false), http.StatusForbidden},
		{"staff with 2FA passes", newTestSession("staff", true), http.StatusOK},
		{"reader passes", newTestSession("reader", true), http.StatusOK},
		{"no session passes through", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := withSession(httptest.NewRequest(http.MethodPut, "/blog/1", nil), tt.session)
			Require2FA(okHandler).ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
