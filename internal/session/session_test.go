package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinestream/internal/movieapi"
)

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestStoreAndRead(t *testing.T) {
	m := NewManager("app-secret", false)
	rec := httptest.NewRecorder()
	claims, err := m.Store(rec, "backend-token-123")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if claims.SessionID == "" {
		t.Fatalf("missing session id")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	ck := cookies[0]
	if ck.Name != CookieName || ck.Path != "/" || !ck.HttpOnly {
		t.Fatalf("cookie = %+v", ck)
	}
	if strings.Contains(ck.Value, "backend-token-123") {
		t.Fatalf("cookie leaks the backend token")
	}

	got, err := m.CredentialFromRequest(requestWithCookies(rec))
	if err != nil {
		t.Fatalf("CredentialFromRequest: %v", err)
	}
	if got.Credential != "backend-token-123" || got.SessionID != claims.SessionID {
		t.Fatalf("claims = %+v", got)
	}
}

func TestCredentialFromRequestRejects(t *testing.T) {
	m := NewManager("app-secret", false)

	if _, err := m.CredentialFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("missing cookie: %v", err)
	}

	rec := httptest.NewRecorder()
	if _, err := NewManager("other-secret", false).Store(rec, "tok"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := m.CredentialFromRequest(requestWithCookies(rec)); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("foreign signature accepted: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "raw-backend-token"})
	if _, err := m.CredentialFromRequest(req); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("unsigned cookie accepted: %v", err)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	m := NewManager("app-secret", true)
	rec := httptest.NewRecorder()
	m.Clear(rec)
	ck := rec.Result().Cookies()[0]
	if ck.Name != CookieName || ck.MaxAge >= 0 || ck.Path != "/" || !ck.Secure {
		t.Fatalf("cookie = %+v", ck)
	}
}

func TestRequireCredential(t *testing.T) {
	m := NewManager("app-secret", false)
	var seen *Claims
	h := m.RequireCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("guard = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/movies/1/rate", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("post guard = %d", rec.Code)
	}

	login := httptest.NewRecorder()
	if _, err := m.Store(login, "tok"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookies(login))
	if rec.Code != http.StatusOK || seen == nil || seen.Credential != movieapi.Credential("tok") {
		t.Fatalf("authorized request = %d claims = %+v", rec.Code, seen)
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	m := NewManager("app-secret", false)
	h := m.RedirectIfAuthenticated("/movies")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("anonymous = %d", rec.Code)
	}

	login := httptest.NewRecorder()
	_, _ = m.Store(login, "tok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookies(login))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/movies" {
		t.Fatalf("signed in = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestResponseStore(t *testing.T) {
	m := NewManager("app-secret", false)
	rec := httptest.NewRecorder()
	store := &ResponseStore{Manager: m, Writer: rec}
	if err := store.Store("tok"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if store.Claims == nil || store.Claims.Credential != "tok" {
		t.Fatalf("claims = %+v", store.Claims)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("cookie not written")
	}
}
