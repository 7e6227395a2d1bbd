// Package domain defines the Telegram bot and account linking ports
package domain

import (
	"context"
	"time"

	tg "djnic/internal/adapters/telegram"
)

// StorageRepo covers channels, link tokens and the message log
type StorageRepo interface {
	InvalidateTokens(ctx context.Context, userID int64) error
	InsertToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	// UnusedToken locks the unused token row for the rest of the transaction
	UnusedToken(ctx context.Context, token string) (StoredToken, bool, error)
	MarkTokenUsed(ctx context.Context, id int64) error

	ChannelByChat(ctx context.Context, chatID int64) (Channel, bool, error)
	ChannelByUser(ctx context.Context, userID int64) (Channel, bool, error)
	// LinkChannel makes chat the only channel of userID, active and verified
	LinkChannel(ctx context.Context, userID int64, p ChatProfile) error
	DeleteChannel(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error

	UserName(ctx context.Context, userID int64) (string, error)
	ActiveSubscriptionCount(ctx context.Context, userID int64) (int, error)
	ActiveSubscriptions(ctx context.Context, userID int64) ([]Subscription, error)

	LogMessage(ctx context.Context, m MessageLog) error
}

// Bot is the part of the Bot API client the service uses
type Bot interface {
	Configured() bool
	SendMessage(ctx context.Context, m tg.SendMessage) (tg.Message, error)
}

// ServicePort is used by the HTTP layer
type ServicePort interface {
	HandleUpdate(ctx context.Context, raw []byte) error
	IssueToken(ctx context.Context, userID int64) (LinkToken, error)
	Redeem(ctx context.Context, token string, p ChatProfile) (Redeemed, error)
	Status(ctx context.Context, userID int64) (Status, error)
	Toggle(ctx context.Context, userID int64, action string) (ToggleResult, error)
	Unlink(ctx context.Context, userID int64) (UnlinkResult, error)
}
