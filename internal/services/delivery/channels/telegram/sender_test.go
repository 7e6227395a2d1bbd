package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/testkit"
	ptime "djnic/internal/platform/time"
	dvdom "djnic/internal/services/delivery/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeBot struct {
	token string
	sent  []tg.SendMessage
	err   error
}

func (b *fakeBot) Configured() bool { return b.token != "" }

func (b *fakeBot) SendMessage(_ context.Context, m tg.SendMessage) (tg.Message, error) {
	if b.err != nil {
		return tg.Message{}, b.err
	}
	b.sent = append(b.sent, m)
	return tg.Message{MessageID: 900 + int64(len(b.sent)), Chat: tg.Chat{ID: m.ChatID}}, nil
}

type fakeChannels struct {
	channels    []dvdom.Channel
	deactivated []int64
	logged      []OutMessage
	ok, failed  map[int64]int
}

func (f *fakeChannels) ActiveChannels(_ context.Context, userID int64) ([]dvdom.Channel, error) {
	var out []dvdom.Channel
	for _, c := range f.channels {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChannels) Succeeded(_ context.Context, id int64, _ time.Time) error {
	f.ok[id]++
	return nil
}

func (f *fakeChannels) Failed(_ context.Context, id int64, _ string, _ time.Time) error {
	f.failed[id]++
	return nil
}

func (f *fakeChannels) Deactivate(_ context.Context, id int64, _ time.Time) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeChannels) LogOutgoing(_ context.Context, m OutMessage) error {
	f.logged = append(f.logged, m)
	return nil
}

func newSender(bot *fakeBot) (*Sender, *fakeChannels) {
	f := &fakeChannels{
		channels: []dvdom.Channel{{ID: 3, UserID: 7, ChatID: 555, ParseMode: "HTML", DisablePreview: true}},
		ok:       map[int64]int{},
		failed:   map[int64]int{},
	}
	s := NewSender(bot, &testkit.Tx{}, repokit.BindFunc[ChannelRepo](func(repokit.Queryer) ChannelRepo { return f }), site, ptime.Fixed(now))
	return s, f
}

func notification() dvdom.Notification {
	return dvdom.Notification{ID: 11, UserID: 7, Title: "Hola", EventData: map[string]any{"description": "x"}}
}

func TestSend_Success(t *testing.T) {
	bot := &fakeBot{token: "t"}
	s, f := newSender(bot)
	ch := f.channels[0]

	res := s.Send(context.Background(), ch, notification())

	assert.Equal(t, dvdom.SendResult{Success: true, ExternalID: "901"}, res)
	require.Len(t, bot.sent, 1)
	assert.Equal(t, tg.SendMessage{ChatID: 555, Text: "<b>Hola</b>\nx", ParseMode: "HTML", DisableWebPagePreview: true}, bot.sent[0])
	require.Len(t, f.logged, 1)
	assert.Equal(t, OutMessage{ChannelID: 3, ChatID: 555, Text: "<b>Hola</b>\nx", MessageID: 901}, f.logged[0])
}

func TestSend_NotConfigured(t *testing.T) {
	s, f := newSender(&fakeBot{})
	res := s.Send(context.Background(), f.channels[0], notification())
	assert.Equal(t, dvdom.SendResult{Error: "TELEGRAM_BOT_TOKEN not configured"}, res)
}

func TestSend_BlockedDeactivates(t *testing.T) {
	bot := &fakeBot{token: "t", err: &tg.APIError{Code: 403, Description: "Forbidden: bot was blocked by the user"}}
	s, f := newSender(bot)

	res := s.Send(context.Background(), f.channels[0], notification())

	assert.False(t, res.Success)
	assert.Equal(t, "Telegram API error 403: Forbidden: bot was blocked by the user", res.Error)
	assert.Equal(t, []int64{3}, f.deactivated)
	assert.Empty(t, f.logged)
}

func TestSend_OtherErrorKeepsChannel(t *testing.T) {
	bot := &fakeBot{token: "t", err: errors.New("Telegram API timeout")}
	s, f := newSender(bot)

	res := s.Send(context.Background(), f.channels[0], notification())

	assert.Equal(t, dvdom.SendResult{Error: "Telegram API timeout"}, res)
	assert.Empty(t, f.deactivated)
}

func TestSender_ChannelsAndStats(t *testing.T) {
	s, f := newSender(&fakeBot{token: "t"})
	ctx := context.Background()

	chs, err := s.ActiveChannels(ctx, 7)
	require.NoError(t, err)
	require.Len(t, chs, 1)

	require.NoError(t, s.Succeeded(ctx, chs[0], now))
	require.NoError(t, s.Failed(ctx, chs[0], "boom", now))
	assert.Equal(t, 1, f.ok[3])
	assert.Equal(t, 1, f.failed[3])
	assert.Equal(t, dvdom.ChannelTelegram, s.ChannelType())
}
