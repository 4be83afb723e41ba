// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"net/http"
	"strings"
	"time"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Handler serves account signup and email/password sign-in.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Sessions: sessions, Log: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// HandleSignup handles POST /auth/signup: creates the account and signs the
// new user in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		httpjson.BadRequest(w, "a valid email address is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.BadRequest(w, "password must be at least 8 characters")
		return
	}
	role := req.Role
	if role == "" {
		role = "student"
	}
	if role != "student" && role != "orgadmin" {
		httpjson.BadRequest(w, "role must be student or orgadmin")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("signup: hash password", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.Create(ctx, userstore.CreateInput{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err == userstore.ErrDuplicateEmail {
		httpjson.Error(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		h.Log.Error("signup: create user", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	h.issueSession(w, &auth.SessionUser{
		ID:    user.ID.Hex(),
		Email: user.Email,
		Role:  user.Role,
	}, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		h.Log.Error("login: lookup user", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if user == nil || normalize.Status(user.Status) != "active" {
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.issueSession(w, &auth.SessionUser{
		ID:    user.ID.Hex(),
		Email: user.Email,
		Role:  user.Role,
	}, http.StatusOK)
}

// HandleLogout handles POST /auth/logout. Per-user cached state is cleared
// synchronously before the response is written.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	h.Sessions.SignOut(user.ID)
	httpjson.OK(w, map[string]bool{"success": true})
}

func (h *Handler) issueSession(w http.ResponseWriter, u *auth.SessionUser, status int) {
	token, expires, err := h.Sessions.IssueToken(u)
	if err != nil {
		h.Log.Error("issue session token", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, status, sessionResponse{
		Token:     token,
		ExpiresAt: expires,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
	})
}
