package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"djnic/internal/core/events"
	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/testkit"
	ptime "djnic/internal/platform/time"
	ntdom "djnic/internal/services/notifier/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var registered = []string{string(events.Registered)}

type memRepo struct {
	events    []ntdom.PendingEvent
	targets   map[events.Subject]int64
	subs      map[int64][]ntdom.Subscription
	created   []ntdom.NewNotification
	touched   map[int64]time.Time
	targeted  map[int64]time.Time
	processed map[int64]bool
	failOn    int64
}

func newMem() *memRepo {
	return &memRepo{
		targets:   map[events.Subject]int64{},
		subs:      map[int64][]ntdom.Subscription{},
		touched:   map[int64]time.Time{},
		targeted:  map[int64]time.Time{},
		processed: map[int64]bool{},
	}
}

func (m *memRepo) UnprocessedEvents(_ context.Context, limit int) ([]ntdom.PendingEvent, error) {
	var out []ntdom.PendingEvent
	for _, e := range m.events {
		if !m.processed[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) TargetBySubject(_ context.Context, s events.Subject) (ntdom.Target, bool, error) {
	id, ok := m.targets[s]
	return ntdom.Target{ID: id}, ok, nil
}

func (m *memRepo) ActiveSubscriptions(_ context.Context, targetID int64) ([]ntdom.Subscription, error) {
	return m.subs[targetID], nil
}

func (m *memRepo) CreateNotification(_ context.Context, n ntdom.NewNotification) (int64, error) {
	if n.EventID == m.failOn {
		return 0, errors.New("insert failed")
	}
	m.created = append(m.created, n)
	return int64(len(m.created)), nil
}

func (m *memRepo) TouchSubscription(_ context.Context, id int64, at time.Time) error {
	m.touched[id] = at
	return nil
}

func (m *memRepo) TouchTarget(_ context.Context, id int64, at time.Time) error {
	m.targeted[id] = at
	return nil
}

func (m *memRepo) MarkProcessed(_ context.Context, id int64) error {
	m.processed[id] = true
	return nil
}

func newSvc(m *memRepo) (*Service, *testkit.Tx) {
	tx := &testkit.Tx{}
	return New(tx, repokit.BindFunc[ntdom.StorageRepo](func(repokit.Queryer) ntdom.StorageRepo { return m }), ptime.Fixed(now)), tx
}

func event(id int64, kind events.Kind, subject int64, desc string) ntdom.PendingEvent {
	return ntdom.PendingEvent{
		ID:        id,
		Kind:      kind,
		Subject:   events.Subject{Kind: events.SubjectDomain, ID: subject},
		Data:      map[string]any{"description": desc},
		CreatedAt: now.Add(-time.Hour),
	}
}

func TestProcess_FansOutToMatchingSubscriptions(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Expired, 10, "Dominio ejemplo.com.ar expiró")}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{
		{ID: 1, UserID: 7, EventTypes: []string{string(events.Expired)}},
		{ID: 2, UserID: 8},
		{ID: 3, UserID: 9, EventTypes: []string{string(events.DNSChanged)}},
	}
	s, tx := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, ntdom.Result{Processed: 1, Notifications: 1}, res)
	assert.Equal(t, 1, tx.Calls)
	require.Len(t, m.created, 1)
	assert.Equal(t, int64(7), m.created[0].UserID)
	assert.Equal(t, ntdom.TypeSingle, m.created[0].Type)
	assert.Equal(t, "Dominio ejemplo.com.ar expiró", m.created[0].Title)
	assert.Equal(t, m.created[0].Title, m.created[0].Summary)
	assert.Equal(t, now.Add(-time.Hour), m.created[0].EventDate)
	assert.Contains(t, m.touched, int64(1))
	assert.NotContains(t, m.touched, int64(2))
	assert.NotContains(t, m.touched, int64(3))
	assert.Equal(t, now, m.targeted[100])
	assert.True(t, m.processed[1])
}

func TestProcess_NoTargetIsMarkedProcessed(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Registered, 10, "x")}
	s, _ := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	assert.Equal(t, ntdom.Result{Processed: 1, Skipped: 1}, res)
	assert.True(t, m.processed[1])
	assert.Empty(t, m.targeted)
}

func TestProcess_NoMatchStillProcessedOnce(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Registered, 10, "x")}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7, EventTypes: []string{string(events.Dropped)}}}
	s, _ := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.True(t, m.processed[1])
	assert.NotContains(t, m.targeted, int64(100))

	res, err = s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
}

func TestProcess_TruncatesTitle(t *testing.T) {
	long := strings.Repeat("á", 250)
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Registered, 10, long)}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7, EventTypes: registered}}
	s, _ := newSvc(m)

	_, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	require.Len(t, m.created, 1)
	assert.Equal(t, strings.Repeat("á", 197)+"...", m.created[0].Title)
	assert.Equal(t, long, m.created[0].Summary)
}

func TestProcess_FailureIsIsolated(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{
		event(1, events.Registered, 10, "a"),
		event(2, events.Registered, 10, "b"),
	}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7, EventTypes: registered}}
	m.failOn = 1
	s, _ := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	assert.Equal(t, ntdom.Result{Processed: 1, Notifications: 1, Failed: 1}, res)
	assert.False(t, m.processed[1])
	assert.True(t, m.processed[2])
}

func TestProcess_DryRunWritesNothing(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Registered, 10, "a")}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7, EventTypes: registered}, {ID: 2, UserID: 8, EventTypes: registered}}
	s, tx := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Notifications)
	assert.Zero(t, tx.Calls)
	assert.Empty(t, m.created)
	assert.Empty(t, m.processed)
}

func TestProcess_TxFailureCountsAsFailed(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Registered, 10, "a")}
	s, tx := newSvc(m)
	tx.Fail = errors.New("begin failed")

	res, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)
	assert.Equal(t, ntdom.Result{Failed: 1}, res)
}

func TestProcess_EmptyEventTypesMatchNothing(t *testing.T) {
	m := newMem()
	m.events = []ntdom.PendingEvent{event(1, events.Dropped, 10, "El dominio ejemplo.com.ar cayó")}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7}}
	s, _ := newSvc(m)

	res, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	assert.Equal(t, ntdom.Result{Processed: 1, Skipped: 1}, res)
	assert.Empty(t, m.created)
	assert.True(t, m.processed[1])
}

func TestProcess_TitleFallsBackToKindLabel(t *testing.T) {
	m := newMem()
	e := event(1, events.Dropped, 10, "")
	e.Data = map[string]any{}
	m.events = []ntdom.PendingEvent{e}
	m.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}] = 100
	m.subs[100] = []ntdom.Subscription{{ID: 1, UserID: 7, EventTypes: []string{string(events.Dropped)}}}
	s, _ := newSvc(m)

	_, err := s.Process(context.Background(), ntdom.Params{})
	require.NoError(t, err)

	require.Len(t, m.created, 1)
	assert.Equal(t, "Dominio Caido", m.created[0].Title)
	assert.Empty(t, m.created[0].Summary)
}

func TestSubscriptionWants(t *testing.T) {
	none := ntdom.Subscription{}
	some := ntdom.Subscription{EventTypes: []string{string(events.Dropped)}}
	for _, k := range events.Kinds {
		assert.False(t, none.Wants(k), k)
		assert.Equal(t, k == events.Dropped, some.Wants(k), k)
	}
}
