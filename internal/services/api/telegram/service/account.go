package service

import (
	"context"

	perr "djnic/internal/platform/errors"
	tgdom "djnic/internal/services/api/telegram/domain"
)

const noChannel = "No hay cuenta de Telegram vinculada"

// Status reports the caller's channel
func (s *Service) Status(ctx context.Context, userID int64) (tgdom.Status, error) {
	ch, ok, err := s.repo().ChannelByUser(ctx, userID)
	if err != nil {
		return tgdom.Status{}, err
	}
	if !ok {
		return tgdom.Status{Linked: false, Message: noChannel}, nil
	}
	return tgdom.Status{
		Linked:      true,
		IsActive:    &ch.IsActive,
		IsVerified:  &ch.IsVerified,
		DisplayName: ch.DisplayName(),
		LastSentAt:  ch.LastSentAt,
		ErrorCount:  &ch.ErrorCount,
	}, nil
}

// Toggle enables, disables or flips notifications; an empty action flips
func (s *Service) Toggle(ctx context.Context, userID int64, action string) (tgdom.ToggleResult, error) {
	repo := s.repo()
	ch, ok, err := repo.ChannelByUser(ctx, userID)
	if err != nil {
		return tgdom.ToggleResult{}, err
	}
	if !ok {
		return tgdom.ToggleResult{}, perr.New(perr.ErrorCodeNotFound, noChannel)
	}

	active := !ch.IsActive
	switch action {
	case tgdom.ActionEnable:
		active = true
	case tgdom.ActionDisable:
		active = false
	case tgdom.ActionToggle, "":
	default:
		return tgdom.ToggleResult{}, perr.WithField(perr.InvalidArgf("unknown action %q", action), "action")
	}

	if err := repo.SetActive(ctx, ch.ID, active); err != nil {
		return tgdom.ToggleResult{}, err
	}
	msg := "Notificaciones desactivadas"
	if active {
		msg = "Notificaciones activadas"
	}
	return tgdom.ToggleResult{IsActive: active, Message: msg}, nil
}

// Unlink removes the caller's channel
func (s *Service) Unlink(ctx context.Context, userID int64) (tgdom.UnlinkResult, error) {
	repo := s.repo()
	ch, ok, err := repo.ChannelByUser(ctx, userID)
	if err != nil {
		return tgdom.UnlinkResult{}, err
	}
	if !ok {
		return tgdom.UnlinkResult{}, perr.New(perr.ErrorCodeNotFound, noChannel)
	}
	if err := repo.DeleteChannel(ctx, ch.ID); err != nil {
		return tgdom.UnlinkResult{}, err
	}
	return tgdom.UnlinkResult{Success: true, Message: "Cuenta de Telegram desvinculada"}, nil
}
