// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"tagpress/internal/errs"
	"tagpress/internal/middleware"
	"tagpress/internal/models"
	"tagpress/internal/render"
	"tagpress/internal/session"
)

const (
	// totpIssuer labels the account in authenticator apps.
	totpIssuer = "Tagpress"

	minPasswordLength = 8
	maxDisplayName    = 100

	// Values of LoginResponse.TwoFactor.
	twoFactorDone   = "done"
	twoFactorSetup  = "setup"
	twoFactorVerify = "verify"
)

// UserRepository is the account storage used by Auth.
type UserRepository interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(email, password, displayName string, role models.Role) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// LoginResponse tells the client who signed in and what second factor
// step, if any, remains.
type LoginResponse struct {
	User      *models.User `json:"user"`
	TwoFactor string       `json:"two_factor"`
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	users    UserRepository
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users UserRepository) *Auth {
	return &Auth{sessions: sessions, users: users}
}

// Signup registers a reader account and signs it in.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, "email", "password", "display_name")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(fields["email"]))
	name := strings.TrimSpace(fields["display_name"])
	if msg := validateSignup(email, fields["password"], name); msg != "" {
		render.Error(w, r, errs.Invalid(msg))
		return
	}

	user, err := a.users.Create(email, fields["password"], name, models.RoleReader)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			render.JSON(w, http.StatusConflict, render.ErrorBody{
				Error: "An account with that email already exists.", Status: http.StatusConflict,
			})
			return
		}
		render.Error(w, r, err)
		return
	}

	if err := a.startSession(w, r, user, true); err != nil {
		render.Error(w, r, err)
		return
	}
	slog.Info("user signed up", "user_id", user.ID)
	render.JSON(w, http.StatusCreated, LoginResponse{User: user, TwoFactor: twoFactorDone})
}

// Login checks credentials and creates a session. Staff and superusers
// are only fully signed in after the second factor.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, "email", "password")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(fields["email"]))
	user, err := a.users.FindByEmail(email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		render.Error(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, fields["password"]) {
		slog.Info("login failed", "email", email)
		render.JSON(w, http.StatusUnauthorized, render.ErrorBody{
			Error: "Invalid email or password.", Status: http.StatusUnauthorized,
		})
		return
	}

	done := !user.IsElevated()
	if err := a.startSession(w, r, user, done); err != nil {
		render.Error(w, r, err)
		return
	}

	step := twoFactorDone
	switch {
	case user.Needs2FASetup():
		step = twoFactorSetup
	case user.IsElevated():
		step = twoFactorVerify
	}
	slog.Info("user logged in", "user_id", user.ID, "two_factor", step)
	render.JSON(w, http.StatusOK, LoginResponse{User: user, TwoFactor: step})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user and the CSRF token to echo on writes.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	step := twoFactorDone
	if !sess.TwoFADone {
		step = twoFactorVerify
		if user.Needs2FASetup() {
			step = twoFactorSetup
		}
	}
	render.JSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"two_factor": step,
		"csrf_token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}

// TwoFASetup generates a TOTP secret for a staff account that has none
// enabled yet and returns its QR code as a PNG. The secret is also sent in
// the X-TOTP-Secret header for manual entry.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if !user.IsElevated() {
		render.Error(w, r, errs.Invalid("Two-factor authentication is only used by staff accounts."))
		return
	}
	if user.TOTPEnabled {
		render.JSON(w, http.StatusConflict, render.ErrorBody{
			Error: "Two-factor authentication is already set up.", Status: http.StatusConflict,
		})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		render.Error(w, r, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-TOTP-Secret", key.Secret())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		slog.Debug("write qr code", "error", err)
	}
}

// TwoFAVerify checks a TOTP code, enables 2FA on first use and marks the
// session as fully signed in.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	fields, err := readFields(w, r, "code")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if user.TOTPSecret == nil {
		render.Error(w, r, errs.Invalid("Set up two-factor authentication first."))
		return
	}
	if !totp.Validate(strings.TrimSpace(fields["code"]), *user.TOTPSecret) {
		render.Error(w, r, errs.Invalid("Invalid code. Please try again."))
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			render.Error(w, r, err)
			return
		}
		user.TOTPEnabled = true
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		render.Error(w, r, err)
		return
	}
	slog.Info("two-factor verified", "user_id", user.ID)
	render.JSON(w, http.StatusOK, LoginResponse{User: user, TwoFactor: twoFactorDone})
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User, twoFADone bool) error {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   twoFADone,
	})
	return err
}

// validateSignup returns a message for the first invalid signup field.
func validateSignup(email, password, displayName string) string {
	at := strings.LastIndex(email, "@")
	switch {
	case at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n"):
		return "Enter a valid email address."
	case len(password) < minPasswordLength:
		return "Password must be at least 8 characters."
	case displayName == "":
		return "Display name is required."
	case len([]rune(displayName)) > maxDisplayName:
		return "Display name must be at most 100 characters."
	}
	return ""
}
