package service

import (
	"context"
	"testing"

	"djnic/internal/core/events"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/testkit"
	subdom "djnic/internal/services/api/subscriptions/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var domainUID = uuid.MustParse("1f0c1c7e-6f43-4b5e-9a55-0c6c1c1f3e2a")

type sub struct {
	subdom.Subscription
	userID, targetID int64
}

type memRepo struct {
	subjects map[uuid.UUID]int64
	targets  map[events.Subject]int64
	subs     []*sub
	notes    []subdom.NotificationQuery
	read     []uuid.UUID
	lookups  []string
}

func newMem() *memRepo {
	return &memRepo{subjects: map[uuid.UUID]int64{domainUID: 10}, targets: map[events.Subject]int64{}}
}

func (m *memRepo) SubjectID(_ context.Context, _ events.SubjectKind, uid uuid.UUID) (int64, error) {
	if id, ok := m.subjects[uid]; ok {
		return id, nil
	}
	return 0, perr.NotFoundf("target %s not found", uid)
}

func (m *memRepo) EnsureTarget(_ context.Context, s events.Subject) (int64, error) {
	if id, ok := m.targets[s]; ok {
		return id, nil
	}
	id := int64(len(m.targets) + 1)
	m.targets[s] = id
	return id, nil
}

func (m *memRepo) UpsertSubscription(_ context.Context, in subdom.UpsertSubscription) (uuid.UUID, error) {
	for _, s := range m.subs {
		if s.userID == in.UserID && s.targetID == in.TargetID {
			s.EventTypes, s.DeliveryMode, s.IsActive = in.EventTypes, in.DeliveryMode, true
			return s.UID, nil
		}
	}
	s := &sub{userID: in.UserID, targetID: in.TargetID, Subscription: subdom.Subscription{
		UID: uuid.New(), EventTypes: in.EventTypes, DeliveryMode: in.DeliveryMode, IsActive: true,
	}}
	m.subs = append(m.subs, s)
	return s.UID, nil
}

func (m *memRepo) Subscription(_ context.Context, userID int64, uid uuid.UUID) (subdom.Subscription, error) {
	for _, s := range m.subs {
		if s.userID == userID && s.UID == uid {
			return s.Subscription, nil
		}
	}
	return subdom.Subscription{}, perr.ErrNotFound
}

func (m *memRepo) ActiveSubscriptions(_ context.Context, userID int64) ([]subdom.Subscription, error) {
	var out []subdom.Subscription
	for _, s := range m.subs {
		if s.userID == userID && s.IsActive {
			out = append(out, s.Subscription)
		}
	}
	return out, nil
}

func (m *memRepo) Deactivate(_ context.Context, userID int64, uid uuid.UUID) error {
	for _, s := range m.subs {
		if s.userID == userID && s.UID == uid && s.IsActive {
			s.IsActive = false
			return nil
		}
	}
	return perr.NotFoundf("subscription %s not found", uid)
}

func (m *memRepo) Notifications(_ context.Context, q subdom.NotificationQuery) ([]subdom.Notification, error) {
	m.notes = append(m.notes, q)
	return nil, nil
}

func (m *memRepo) MarkRead(_ context.Context, _ int64, uid uuid.UUID) error {
	m.read = append(m.read, uid)
	return nil
}

func (m *memRepo) DeleteNotification(context.Context, int64, uuid.UUID) error { return nil }

func (m *memRepo) FindDomains(_ context.Context, name string, limit int) ([]subdom.DomainRef, error) {
	m.lookups = append(m.lookups, name)
	if name != "ejemplo.com.ar" || limit != subdom.LookupLimit {
		return nil, nil
	}
	return []subdom.DomainRef{{UID: domainUID, Name: name, Status: "no disponible"}}, nil
}

func (m *memRepo) FindRegistrants(_ context.Context, legalUID string) ([]subdom.RegistrantRef, error) {
	m.lookups = append(m.lookups, legalUID)
	return nil, nil
}

func newSvc() (*Service, *memRepo, *testkit.Tx) {
	mem, tx := newMem(), &testkit.Tx{}
	return New(tx, repokit.BindFunc[subdom.StorageRepo](func(repokit.Queryer) subdom.StorageRepo { return mem })), mem, tx
}

func TestSubscribeCreatesTargetOnce(t *testing.T) {
	s, mem, tx := newSvc()
	ctx := context.Background()
	in := subdom.SubscribeInput{TargetKind: "domain", TargetID: domainUID.String()}

	first, err := s.Subscribe(ctx, 1, in)
	require.NoError(t, err)
	assert.Equal(t, subdom.ModeImmediate, first.DeliveryMode)
	assert.Equal(t, []string{"registered", "renewed", "expired", "dropped", "dns_changed", "registrant_changed"}, first.EventTypes)

	_, err = s.Subscribe(ctx, 2, in)
	require.NoError(t, err)
	assert.Len(t, mem.targets, 1)
	assert.Equal(t, int64(1), mem.targets[events.Subject{Kind: events.SubjectDomain, ID: 10}])
	assert.Equal(t, 2, tx.Calls)
}

func TestSubscribeAgainReactivates(t *testing.T) {
	s, mem, _ := newSvc()
	ctx := context.Background()
	in := subdom.SubscribeInput{TargetKind: "domain", TargetID: domainUID.String()}

	first, err := s.Subscribe(ctx, 1, in)
	require.NoError(t, err)
	require.NoError(t, s.Unsubscribe(ctx, 1, first.UID.String()))
	list, err := s.Subscriptions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	in.EventTypes = []string{"renewed", "dropped", "renewed"}
	in.DeliveryMode = subdom.ModeWeekly
	again, err := s.Subscribe(ctx, 1, in)
	require.NoError(t, err)
	assert.Equal(t, first.UID, again.UID)
	assert.True(t, again.IsActive)
	assert.Equal(t, []string{"renewed", "dropped"}, again.EventTypes)
	assert.Len(t, mem.subs, 1)
}

func TestSubscribeRejects(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		in    subdom.SubscribeInput
		code  perr.ErrorCode
		field string
	}{
		{"bad uid", subdom.SubscribeInput{TargetKind: "domain", TargetID: "x"}, perr.ErrorCodeInvalidArgument, "target_id"},
		{"bad kind", subdom.SubscribeInput{TargetKind: "zone", TargetID: domainUID.String()}, perr.ErrorCodeInvalidArgument, "target_kind"},
		{"bad event", subdom.SubscribeInput{TargetKind: "domain", TargetID: domainUID.String(), EventTypes: []string{"born"}}, perr.ErrorCodeInvalidArgument, "event_types"},
		{"unknown target", subdom.SubscribeInput{TargetKind: "registrant", TargetID: uuid.NewString()}, perr.ErrorCodeNotFound, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, mem, _ := newSvc()
			_, err := s.Subscribe(ctx, 1, c.in)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, c.code), "code of %v", err)
			if c.field != "" {
				e, ok := perr.As(err)
				require.True(t, ok)
				assert.Equal(t, c.field, e.Field())
			}
			assert.Empty(t, mem.subs)
		})
	}
}

func TestUnsubscribeUnknown(t *testing.T) {
	s, _, _ := newSvc()
	err := s.Unsubscribe(context.Background(), 1, uuid.NewString())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
	err = s.Unsubscribe(context.Background(), 1, "nope")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestNotificationLimits(t *testing.T) {
	s, mem, _ := newSvc()
	ctx := context.Background()
	for _, limit := range []int{0, 20, 1000} {
		out, err := s.Notifications(ctx, subdom.NotificationQuery{UserID: 1, Limit: limit, Unread: true})
		require.NoError(t, err)
		assert.NotNil(t, out)
	}
	require.Len(t, mem.notes, 3)
	assert.Equal(t, subdom.DefaultListLimit, mem.notes[0].Limit)
	assert.Equal(t, 20, mem.notes[1].Limit)
	assert.Equal(t, subdom.MaxListLimit, mem.notes[2].Limit)
	assert.True(t, mem.notes[0].Unread)

	id := uuid.New()
	require.NoError(t, s.MarkRead(ctx, 1, id.String()))
	assert.Equal(t, []uuid.UUID{id}, mem.read)
}

func TestDomainsResolvesSubscribableUID(t *testing.T) {
	s, mem, _ := newSvc()
	ctx := context.Background()

	got, err := s.Domains(ctx, "  Ejemplo.COM.ar. ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"ejemplo.com.ar"}, mem.lookups)

	_, err = s.Subscribe(ctx, 1, subdom.SubscribeInput{TargetKind: "domain", TargetID: got[0].UID.String()})
	require.NoError(t, err)

	none, err := s.Domains(ctx, "otro.com.ar")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLookupsRequireAQuery(t *testing.T) {
	s, mem, _ := newSvc()
	ctx := context.Background()

	_, err := s.Domains(ctx, " ")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
	_, err = s.Registrants(ctx, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
	assert.Empty(t, mem.lookups)

	got, err := s.Registrants(ctx, " 20123456789 ")
	require.NoError(t, err)
	assert.Equal(t, []subdom.RegistrantRef{}, got)
	assert.Equal(t, []string{"20123456789"}, mem.lookups)
}
