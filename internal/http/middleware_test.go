package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionMiddleware_MintsCookie(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getSessionID(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seen == "" {
		t.Fatalf("Expected a session id in context")
	}

	cookies := recorder.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == sessionCookieName && c.Value == seen {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected cookie %s=%s to be set, got %v", sessionCookieName, seen, cookies)
	}
}

func TestSessionMiddleware_ReusesCookie(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getSessionID(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})

	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seen != "existing-session" {
		t.Errorf("Expected session id 'existing-session', got '%s'", seen)
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Errorf("Expected no new cookie for a returning visitor")
	}
}

func TestAuthMiddleware_ForwardsUserID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getUserID(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-User-ID", "user1")

	AuthMiddleware(next).ServeHTTP(recorder, request)

	if seen != "user1" {
		t.Errorf("Expected user id 'user1', got '%s'", seen)
	}
}

func TestAuthMiddleware_AnonymousVisitor(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getUserID(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	AuthMiddleware(next).ServeHTTP(recorder, request)

	if seen != "" {
		t.Errorf("Expected empty user id for anonymous visitor, got '%s'", seen)
	}
}
