package net

import (
	"context"
	"testing"
)

func TestRequestAndUser(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || UserID(ctx) != "" {
		t.Fatal("empty context should carry nothing")
	}

	ctx = WithRequest(ctx, "req-1")
	ctx = WithUser(ctx, "42")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}
	if got := UserID(ctx); got != "42" {
		t.Fatalf("user id = %q", got)
	}

	if WithUser(ctx, "") != ctx {
		t.Fatal("blank user should not wrap the context")
	}
}
