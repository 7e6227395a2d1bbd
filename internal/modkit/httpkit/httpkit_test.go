package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "djnic/internal/platform/errors"
	phttp "djnic/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"":              false,
		"Bearer":        false,
		"Bearer   ":     false,
		"Basic abc":     false,
		"Bearer abc":    true,
		"bearer abc":    true,
		"  BEARER abc ": true,
	}
	for h, ok := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", h)
		tok, err := BearerToken(r)
		if (err == nil) != ok {
			t.Errorf("%q: err = %v", h, err)
		}
		if ok && tok != "abc" {
			t.Errorf("%q: token = %q", h, tok)
		}
	}
}

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("0123456789abcdef0123456789abcdef", "djnic")
	tok, err := j.Sign(42, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	uid, err := j.Verify(tok)
	if err != nil || uid != "42" {
		t.Fatalf("verify = %q, %v", uid, err)
	}

	if _, err := NewJWT("another-secret-another-secret-xx", "djnic").Verify(tok); err == nil {
		t.Fatal("foreign secret accepted")
	}
	if _, err := NewJWT("0123456789abcdef0123456789abcdef", "other").Verify(tok); err == nil {
		t.Fatal("wrong issuer accepted")
	}
	expired, _ := j.Sign(42, -time.Minute)
	if _, err := j.Verify(expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestProtectedRoute(t *testing.T) {
	j := NewJWT("0123456789abcdef0123456789abcdef", "")
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	Protected(r, NewPortFunc(j.Verify), func(pr Router) {
		Get(pr, "/me", func(req *http.Request) (any, error) {
			return UserID(req)
		})
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous code = %d", rec.Code)
	}
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Code != perr.ErrorCodeUnauthorized.String() {
		t.Fatalf("envelope code = %q", env.Code)
	}

	tok, _ := j.Sign(9, time.Minute)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated code = %d body=%s", rec.Code, rec.Body)
	}
	var ok struct {
		Data int64 `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &ok)
	if ok.Data != 9 {
		t.Fatalf("data = %d", ok.Data)
	}
}

func TestCallPassesThroughResponse(t *testing.T) {
	h := Call(func(*http.Request) (any, error) { return NoContent(), nil })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("DELETE", "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestPostJSONKeepsCreatedStatus(t *testing.T) {
	type in struct {
		Name string `json:"name" validate:"required"`
	}
	r := phttp.AdaptChi(chi.NewRouter())
	PostJSON(r, "/things", func(_ *http.Request, v in) (any, error) { return Created(v.Name), nil })

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{"name":"a"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name: code = %d", rec.Code)
	}
}
