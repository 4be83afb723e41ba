package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testKey, time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return m
}

func TestNewSessionManager_WeakKey(t *testing.T) {
	if _, err := NewSessionManager("short", time.Hour, zap.NewNop()); err == nil {
		t.Fatal("expected error for weak signing key")
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	m := newTestManager(t)

	u := &SessionUser{ID: "user-1", Email: "student@example.edu", Role: "student"}
	token, expiry, err := m.IssueToken(u)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if !expiry.After(time.Now()) {
		t.Error("token expiry is not in the future")
	}

	got, err := m.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if got.ID != u.ID || got.Email != u.Email || got.Role != u.Role {
		t.Errorf("VerifyToken = %+v, want %+v", got, u)
	}
}

func TestVerifyToken_Invalid(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.VerifyToken(context.Background(), "not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}

	// Token signed with a different key must be rejected.
	other, _ := NewSessionManager("ffffffffffffffffffffffffffffffff", time.Hour, zap.NewNop())
	token, _, err := other.IssueToken(&SessionUser{ID: "user-2", Role: "student"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := m.VerifyToken(context.Background(), token); err == nil {
		t.Error("expected error for token signed with different key")
	}
}

type fetcherFunc func(ctx context.Context, userID string) *SessionUser

func (f fetcherFunc) FetchUser(ctx context.Context, userID string) *SessionUser {
	return f(ctx, userID)
}

func TestVerifyToken_FetcherRejectsUser(t *testing.T) {
	m := newTestManager(t)
	m.SetUserFetcher(fetcherFunc(func(ctx context.Context, userID string) *SessionUser {
		return nil // user disabled or deleted
	}))

	token, _, err := m.IssueToken(&SessionUser{ID: "user-3", Role: "student"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := m.VerifyToken(context.Background(), token); err == nil {
		t.Error("expected error when fetcher rejects the user")
	}
}

func TestLoadSessionUser(t *testing.T) {
	m := newTestManager(t)
	token, _, err := m.IssueToken(&SessionUser{ID: "user-4", Email: "u@example.edu", Role: "student"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	var seen *SessionUser
	handler := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
	}))

	// With a valid token the user lands in context.
	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.ID != "user-4" {
		t.Errorf("expected user-4 in context, got %+v", seen)
	}

	// No token: request continues unauthenticated.
	seen = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/profile", nil))
	if seen != nil {
		t.Errorf("expected no user in context, got %+v", seen)
	}

	// Garbage token: treated as signed-out, not an error.
	req = httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Errorf("expected no user for invalid token, got %+v", seen)
	}
}

func TestRequireSignedIn(t *testing.T) {
	m := newTestManager(t)
	handler := m.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/saved", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = httptest.NewRecorder()
	req := WithTestUser(httptest.NewRequest("GET", "/saved", nil), &SessionUser{ID: "u1", Role: "student"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated request: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRole(t *testing.T) {
	m := newTestManager(t)
	handler := m.RequireRole("orgadmin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := WithTestUser(httptest.NewRequest("GET", "/orgadmin", nil), &SessionUser{ID: "u1", Role: "student"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student hitting orgadmin route: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	req = WithTestUser(httptest.NewRequest("GET", "/orgadmin", nil), &SessionUser{ID: "u2", Role: "orgadmin"})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("orgadmin hitting orgadmin route: got %d, want %d", rec.Code, http.StatusOK)
	}
}

type recordingListener struct {
	signIns  []string
	signOuts []string
}

func (l *recordingListener) OnSignIn(u *SessionUser) { l.signIns = append(l.signIns, u.ID) }
func (l *recordingListener) OnSignOut(userID string) { l.signOuts = append(l.signOuts, userID) }

func TestNotifierTransitions(t *testing.T) {
	m := newTestManager(t)
	l := &recordingListener{}
	m.Notifier().Subscribe(l)

	if _, _, err := m.IssueToken(&SessionUser{ID: "u9", Role: "student"}); err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	m.SignOut("u9")

	if len(l.signIns) != 1 || l.signIns[0] != "u9" {
		t.Errorf("sign-ins = %v, want [u9]", l.signIns)
	}
	if len(l.signOuts) != 1 || l.signOuts[0] != "u9" {
		t.Errorf("sign-outs = %v, want [u9]", l.signOuts)
	}
}
