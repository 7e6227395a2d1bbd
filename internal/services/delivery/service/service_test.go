package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/testkit"
	ptime "djnic/internal/platform/time"
	dvdom "djnic/internal/services/delivery/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type key struct {
	n   int64
	typ string
	ch  int64
}

type memRepo struct {
	pending    []dvdom.Notification
	filters    []dvdom.PendingFilter
	deliveries map[key]*dvdom.Delivery
	byID       map[int64]*dvdom.Delivery
	errors     map[int64]string
}

func newMem(ns ...dvdom.Notification) *memRepo {
	return &memRepo{pending: ns, deliveries: map[key]*dvdom.Delivery{}, byID: map[int64]*dvdom.Delivery{}, errors: map[int64]string{}}
}

func (m *memRepo) PendingNotifications(_ context.Context, f dvdom.PendingFilter) ([]dvdom.Notification, error) {
	m.filters = append(m.filters, f)
	return m.pending, nil
}

func (m *memRepo) Claim(_ context.Context, n int64, typ string, ch int64) (dvdom.Delivery, error) {
	k := key{n, typ, ch}
	d, ok := m.deliveries[k]
	if !ok {
		d = &dvdom.Delivery{ID: int64(len(m.deliveries) + 1), Status: dvdom.StatusPending}
		m.deliveries[k] = d
		m.byID[d.ID] = d
	}
	return *d, nil
}

func (m *memRepo) MarkSent(_ context.Context, id int64, _ string, _ time.Time) error {
	m.byID[id].Status = dvdom.StatusSent
	return nil
}

func (m *memRepo) MarkFailed(_ context.Context, id int64, msg string, _ time.Time) error {
	d := m.byID[id]
	d.Status = dvdom.StatusFailed
	d.RetryCount++
	m.errors[id] = msg
	return nil
}

type fakeSender struct {
	typ      string
	channels map[int64][]dvdom.Channel
	fail     map[int64]string
	chErr    error
	sends    int
	ok, bad  int
}

func (f *fakeSender) ChannelType() string { return f.typ }

func (f *fakeSender) ActiveChannels(_ context.Context, userID int64) ([]dvdom.Channel, error) {
	return f.channels[userID], f.chErr
}

func (f *fakeSender) Format(n dvdom.Notification) string { return n.Title }

func (f *fakeSender) Send(_ context.Context, ch dvdom.Channel, _ dvdom.Notification) dvdom.SendResult {
	f.sends++
	if msg, ok := f.fail[ch.ID]; ok {
		return dvdom.SendResult{Error: msg}
	}
	return dvdom.SendResult{Success: true, ExternalID: "m1"}
}

func (f *fakeSender) Succeeded(context.Context, dvdom.Channel, time.Time) error {
	f.ok++
	return nil
}

func (f *fakeSender) Failed(context.Context, dvdom.Channel, string, time.Time) error {
	f.bad++
	return nil
}

func telegram() *fakeSender {
	return &fakeSender{
		typ: dvdom.ChannelTelegram,
		channels: map[int64][]dvdom.Channel{
			7: {{ID: 1, UserID: 7, ChatID: 100}},
			8: {{ID: 2, UserID: 8, ChatID: 200}},
		},
		fail: map[int64]string{},
	}
}

func newSvc(m *memRepo, senders ...dvdom.Sender) *Service {
	return New(&testkit.Tx{}, repokit.BindFunc[dvdom.StorageRepo](func(repokit.Queryer) dvdom.StorageRepo { return m }), dvdom.NewRegistry(senders...), ptime.Fixed(now))
}

func TestDeliver_SendsOncePerChannel(t *testing.T) {
	m := newMem()
	tgs := telegram()
	s := newSvc(m, tgs)
	n := dvdom.Notification{ID: 5, UserID: 7, Title: "x"}

	out, err := s.Deliver(context.Background(), n, "")
	require.NoError(t, err)
	assert.Equal(t, dvdom.Outcome{Sent: 1}, out)
	assert.Equal(t, 1, tgs.ok)

	out, err = s.Deliver(context.Background(), n, "")
	require.NoError(t, err)
	assert.Equal(t, dvdom.Outcome{Skipped: 1}, out)
	assert.Equal(t, 1, tgs.sends)
}

func TestDeliver_FailureIsRecordedAndRetried(t *testing.T) {
	m := newMem()
	tgs := telegram()
	tgs.fail[1] = ""
	s := newSvc(m, tgs)
	n := dvdom.Notification{ID: 5, UserID: 7}

	out, err := s.Deliver(context.Background(), n, "")
	require.NoError(t, err)
	assert.Equal(t, dvdom.Outcome{Failed: 1}, out)
	d := m.deliveries[key{5, dvdom.ChannelTelegram, 1}]
	assert.Equal(t, dvdom.StatusFailed, d.Status)
	assert.Equal(t, 1, d.RetryCount)
	assert.Equal(t, dvdom.UnknownError, m.errors[d.ID])
	assert.Equal(t, 1, tgs.bad)

	delete(tgs.fail, 1)
	out, err = s.Deliver(context.Background(), n, "")
	require.NoError(t, err)
	assert.Equal(t, dvdom.Outcome{Sent: 1}, out)
	assert.Equal(t, dvdom.StatusSent, d.Status)
}

func TestDeliver_UnknownChannel(t *testing.T) {
	s := newSvc(newMem(), telegram())
	_, err := s.Deliver(context.Background(), dvdom.Notification{ID: 1, UserID: 7}, "webpush")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestDeliver_ChannelLookupFailureIsCounted(t *testing.T) {
	tgs := telegram()
	tgs.chErr = errors.New("db down")
	s := newSvc(newMem(), tgs)

	out, err := s.Deliver(context.Background(), dvdom.Notification{ID: 1, UserID: 7}, "")
	require.NoError(t, err)
	assert.Equal(t, dvdom.Outcome{Failed: 1}, out)
}

func TestRun_Summary(t *testing.T) {
	m := newMem(
		dvdom.Notification{ID: 1, UserID: 7},
		dvdom.Notification{ID: 2, UserID: 8},
		dvdom.Notification{ID: 3, UserID: 9},
	)
	tgs := telegram()
	tgs.fail[2] = "Telegram API timeout"
	s := newSvc(m, tgs)

	res, err := s.Run(context.Background(), dvdom.Params{})
	require.NoError(t, err)

	assert.Equal(t, dvdom.Result{Notifications: 3, Sent: 1, Failed: 1}, res)
	require.Len(t, m.filters, 1)
	assert.Equal(t, dvdom.PendingFilter{Limit: DefaultLimit, ChannelTypes: []string{dvdom.ChannelTelegram}, MaxRetries: dvdom.DefaultMaxRetries}, m.filters[0])
}

func TestRun_RetryFilterIsPassedThrough(t *testing.T) {
	m := newMem()
	s := newSvc(m, telegram())

	_, err := s.Run(context.Background(), dvdom.Params{Limit: 10, Channel: dvdom.ChannelTelegram, RetryFailed: true, MaxRetries: 5})
	require.NoError(t, err)
	assert.Equal(t, dvdom.PendingFilter{Limit: 10, ChannelTypes: []string{dvdom.ChannelTelegram}, RetryFailed: true, MaxRetries: 5}, m.filters[0])
}

func TestRun_DryRunSendsNothing(t *testing.T) {
	m := newMem(dvdom.Notification{ID: 1, UserID: 7}, dvdom.Notification{ID: 2, UserID: 8})
	tgs := telegram()
	s := newSvc(m, tgs)

	res, err := s.Run(context.Background(), dvdom.Params{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, dvdom.Result{Notifications: 2, Planned: 2}, res)
	assert.Zero(t, tgs.sends)
	assert.Empty(t, m.deliveries)
}

func TestRegistry(t *testing.T) {
	r := dvdom.NewRegistry(&fakeSender{typ: "webpush"}, telegram())
	assert.Equal(t, []string{"telegram", "webpush"}, r.Types())

	got, err := r.Select("")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "telegram", got[0].ChannelType())

	_, ok := r.Get("email")
	assert.False(t, ok)
	assert.Panics(t, func() { r.Register(&fakeSender{}) })
}
