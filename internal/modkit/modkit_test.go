package modkit

import (
	"net/http"
	"testing"
)

func TestBuild(t *testing.T) {
	type ports struct{ N int }
	mw := func(h http.Handler) http.Handler { return h }

	b := Build(WithName("subscriptions"), WithPrefix("/subscriptions"), WithMiddlewares(mw, mw), WithPorts(ports{N: 2}))
	if b.Name != "subscriptions" || b.Prefix != "/subscriptions" {
		t.Fatalf("name/prefix = %q %q", b.Name, b.Prefix)
	}
	if len(b.Mw) != 2 {
		t.Fatalf("mw = %d", len(b.Mw))
	}
	if p, ok := b.Ports.(ports); !ok || p.N != 2 {
		t.Fatalf("ports = %#v", b.Ports)
	}

	if z := Build(); z.Name != "" || z.Mw != nil || z.Ports != nil {
		t.Fatalf("zero build = %#v", z)
	}
}
