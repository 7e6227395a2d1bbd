package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "djnic/internal/platform/errors"
	pnet "djnic/internal/platform/net"
)

type portFunc func(*http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func writeStatus(w http.ResponseWriter, _ *http.Request, err error) {
	w.WriteHeader(perr.HTTPStatus(err))
}

func TestAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.UserID(r.Context())
	})

	ok := Auth(portFunc(func(*http.Request) (string, error) { return "7", nil }), writeStatus)(next)
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK || seen != "7" {
		t.Fatalf("allowed: code=%d user=%q", rec.Code, seen)
	}

	seen = ""
	deny := Auth(portFunc(func(*http.Request) (string, error) {
		return "", perr.Unauthorizedf("nope")
	}), writeStatus)(next)
	rec = httptest.NewRecorder()
	deny.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized || seen != "" {
		t.Fatalf("denied: code=%d user=%q", rec.Code, seen)
	}
}

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(writeStatus)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("kaboom"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestAccessLogCapturesStatus(t *testing.T) {
	var sw *StatusWriter
	h := AccessLog(AccessLogOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		sw = w.(*StatusWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if sw.Status != http.StatusTeapot || sw.Bytes != 3 {
		t.Fatalf("captured %d/%d", sw.Status, sw.Bytes)
	}
}
