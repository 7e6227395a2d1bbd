package pg

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	got := compact("SELECT 1\n\t FROM  domains\r\nWHERE id = $1 ")
	if got != "SELECT 1 FROM domains WHERE id = $1" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracerLevels(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", Elapsed: time.Millisecond})
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("expected debug line, got %s", buf.String())
	}

	buf.Reset()
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 2", Err: errors.New("boom")})
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "boom") {
		t.Fatalf("expected warn line with error, got %s", out)
	}
	if !strings.Contains(out, `"component":"pg"`) {
		t.Fatalf("missing component: %s", out)
	}
}
