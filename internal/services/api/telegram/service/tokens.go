package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	tgdom "djnic/internal/services/api/telegram/domain"
)

// tokenBytes encode to tgdom.TokenLen base64 characters
const tokenBytes = tgdom.TokenLen * 3 / 4

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "generate link token")
	}
	return strings.ToUpper(base64.RawURLEncoding.EncodeToString(b)), nil
}

// IssueToken retires the user's unused tokens and hands out a fresh one
func (s *Service) IssueToken(ctx context.Context, userID int64) (tgdom.LinkToken, error) {
	tok, err := s.newToken()
	if err != nil {
		return tgdom.LinkToken{}, err
	}
	out := tgdom.LinkToken{
		Token:        tok,
		ExpiresAt:    s.Clock.Now().Add(s.Cfg.TokenTTL),
		Instructions: "Envía este código al bot de Telegram: /link " + tok,
	}
	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		if err := repo.InvalidateTokens(ctx, userID); err != nil {
			return err
		}
		return repo.InsertToken(ctx, userID, out.Token, out.ExpiresAt)
	})
	if err != nil {
		return tgdom.LinkToken{}, err
	}
	logger.C(ctx).Info().Str("mod", "telegram").Int64("user_id", userID).Time("expires_at", out.ExpiresAt).Msg("link token issued")
	return out, nil
}

// Redeem links the chat in p to the owner of token.
// A chat already linked to another user is left alone; relinking to the same user refreshes the profile.
func (s *Service) Redeem(ctx context.Context, token string, p tgdom.ChatProfile) (tgdom.Redeemed, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	var out tgdom.Redeemed
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		t, ok, err := repo.UnusedToken(ctx, token)
		if err != nil {
			return err
		}
		if !ok || !t.ExpiresAt.After(s.Clock.Now()) {
			out.Invalid = true
			return nil
		}

		ch, linked, err := repo.ChannelByChat(ctx, p.ChatID)
		if err != nil {
			return err
		}
		if linked && ch.UserID != t.UserID {
			out.LinkedTo = ch.UserName
			return nil
		}

		if err := repo.LinkChannel(ctx, t.UserID, p); err != nil {
			return err
		}
		if err := repo.MarkTokenUsed(ctx, t.ID); err != nil {
			return err
		}
		out.UserName, err = repo.UserName(ctx, t.UserID)
		return err
	})
	if err != nil {
		return tgdom.Redeemed{}, err
	}
	if out.UserName != "" {
		logger.C(ctx).Info().Str("mod", "telegram").Int64("chat_id", p.ChatID).Msg("chat linked")
	}
	return out, nil
}
