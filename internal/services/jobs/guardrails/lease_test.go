package guardrails

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/testkit"
	jobsdom "djnic/internal/services/jobs/domain"

	"github.com/google/uuid"
)

type memLeases struct {
	mu       sync.Mutex
	held     map[string]uuid.UUID
	released []string
	extended int
}

func (m *memLeases) Extend(_ context.Context, name string, owner uuid.UUID, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[name] != owner {
		return false, nil
	}
	m.extended++
	return true, nil
}

func (m *memLeases) extensions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extended
}

func (m *memLeases) steal(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[name] = uuid.New()
}

func (m *memLeases) Claim(_ context.Context, name string, owner uuid.UUID, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.held[name]; ok && cur != owner {
		return false, nil
	}
	m.held[name] = owner
	return true, nil
}

func (m *memLeases) Release(_ context.Context, name string, owner uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[name] == owner {
		delete(m.held, name)
		m.released = append(m.released, name)
	}
	return nil
}

func binder(m *memLeases) repokit.Binder[jobsdom.LeaseRepo] {
	return repokit.BindFunc[jobsdom.LeaseRepo](func(repokit.Queryer) jobsdom.LeaseRepo { return m })
}

func TestLease_RunsAndReleases(t *testing.T) {
	m := &memLeases{held: map[string]uuid.UUID{}}
	l := MakeLease(&testkit.Tx{}, binder(m), 0)
	if l.TTL != 30*time.Minute {
		t.Fatalf("default ttl = %v", l.TTL)
	}

	ran := false
	if err := l.Run(context.Background(), "events", func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !ran || len(m.released) != 1 || len(m.held) != 0 {
		t.Fatalf("ran=%v released=%v held=%v", ran, m.released, m.held)
	}
}

func TestLease_HeldByOtherOwner(t *testing.T) {
	m := &memLeases{held: map[string]uuid.UUID{"notify": uuid.New()}}
	l := MakeLease(&testkit.Tx{}, binder(m), time.Minute)

	err := l.Run(context.Background(), "notify", func(context.Context) error {
		t.Fatal("work must not run")
		return nil
	})
	if !Skip(err) {
		t.Fatalf("want lease held, got %v", err)
	}
}

func TestLease_ReleasesOnError(t *testing.T) {
	m := &memLeases{held: map[string]uuid.UUID{}}
	l := MakeLease(&testkit.Tx{}, binder(m), time.Minute)
	boom := errors.New("boom")

	if err := l.Run(context.Background(), "priority", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(m.held) != 0 {
		t.Fatal("lease not released after failure")
	}
	if Skip(boom) {
		t.Fatal("foreign error reported as skip")
	}
}

func TestLease_ClaimFailure(t *testing.T) {
	boom := errors.New("db down")
	l := MakeLease(&testkit.Tx{Fail: boom}, binder(&memLeases{held: map[string]uuid.UUID{}}), time.Minute)
	if err := l.Run(context.Background(), "x", func(context.Context) error { return nil }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestLease_HeartbeatExtendsLongRuns(t *testing.T) {
	m := &memLeases{held: map[string]uuid.UUID{}}
	l := MakeLease(&testkit.Tx{}, binder(m), time.Minute)
	l.Heartbeat = 5 * time.Millisecond

	err := l.Run(context.Background(), "priority", func(ctx context.Context) error {
		deadline := time.After(2 * time.Second)
		for m.extensions() < 2 {
			select {
			case <-deadline:
				return errors.New("lease never extended")
			case <-time.After(time.Millisecond):
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.held) != 0 {
		t.Fatal("lease not released after run")
	}
}

func TestLease_TakeoverCancelsRun(t *testing.T) {
	m := &memLeases{held: map[string]uuid.UUID{}}
	l := MakeLease(&testkit.Tx{}, binder(m), time.Minute)
	l.Heartbeat = 5 * time.Millisecond

	err := l.Run(context.Background(), "priority", func(ctx context.Context) error {
		m.steal("priority")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	})
	if !errors.Is(err, ErrLeaseLost) {
		t.Fatalf("want lease lost, got %v", err)
	}
	if Skip(err) {
		t.Fatal("lost lease reported as skip")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.released) != 0 {
		t.Fatal("released a lease owned by someone else")
	}
}
