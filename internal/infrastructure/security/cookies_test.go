package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetSession_Attributes(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	SetSession(rr, "sid", 10*time.Minute, true)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "__Host-"+SessionCookieName || c.Value != "sid" {
		t.Fatalf("unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected attributes: %+v", c)
	}
	if c.MaxAge != 600 {
		t.Fatalf("expected MaxAge 600, got %d", c.MaxAge)
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	ClearSession(rr, false)

	c := rr.Result().Cookies()[0]
	if c.Name != SessionCookieName || c.MaxAge >= 0 {
		t.Fatalf("expected expired %s cookie, got %+v", SessionCookieName, c)
	}
}

func TestReadSession_PrefersHostCookie(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "plain"})
	r.AddCookie(&http.Cookie{Name: "__Host-" + SessionCookieName, Value: "host"})

	got, err := ReadSession(r)
	if err != nil || got != "host" {
		t.Fatalf("got %q err=%v", got, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ReadSession(r); err == nil {
		t.Fatalf("expected error without cookie")
	}
}
