package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// ActionExecutor выполняет деструктивную операцию, соответствующую
// варианту диалога. В живом режиме на диалог приходится ровно один
// мутирующий вызов (плюс не более одного fallback для легаси-группы),
// в режиме dry-run — ни одного.
type ActionExecutor struct {
	actions ports.DialogActions
	dryRun  bool
	log     *slog.Logger
}

// ExecutorOption — функциональная опция для настройки ActionExecutor.
type ExecutorOption func(*ActionExecutor)

// WithExecutorLogger устанавливает логгер исполнителя.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *ActionExecutor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewActionExecutor создает исполнителя действий.
func NewActionExecutor(actions ports.DialogActions, dryRun bool, opts ...ExecutorOption) *ActionExecutor {
	e := &ActionExecutor{
		actions: actions,
		dryRun:  dryRun,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute выполняет действие для диалога по его варианту.
// Логирование в dry-run идентично живому прогону, поэтому оператор
// видит, какая ветка сработала бы для каждого диалога.
func (e *ActionExecutor) Execute(ctx context.Context, d domain.Dialog, v domain.Variant) error {
	switch v {
	case domain.VariantBroadcast:
		e.log.InfoContext(ctx, "Leaving channel/supergroup", "index", d.Index, "dialog", d.Title)
		if e.dryRun {
			return nil
		}
		channel, ok := d.Entity.(*tg.Channel)
		if !ok {
			return fmt.Errorf("broadcast dialog %q carries no channel entity", d.Title)
		}
		return e.actions.LeaveChannel(ctx, channel)

	case domain.VariantLegacyGroup:
		e.log.InfoContext(ctx, "Leaving legacy group", "index", d.Index, "dialog", d.Title)
		if e.dryRun {
			return nil
		}
		chat, ok := d.Entity.(*tg.Chat)
		if !ok {
			return fmt.Errorf("legacy group dialog %q carries no chat entity", d.Title)
		}
		err := e.actions.LeaveLegacyChat(ctx, chat)
		if err == nil {
			return nil
		}
		if !allowsFallback(err) {
			return err
		}
		// Самоудаление из части легаси-групп запрещено платформой,
		// хотя общее удаление диалога для них все еще проходит.
		e.log.WarnContext(ctx, "Self-removal failed, falling back to dialog deletion",
			"dialog", d.Title, "error", err)
		return e.actions.DeleteDialog(ctx, d.Peer)

	case domain.VariantDirectOrBot:
		e.log.InfoContext(ctx, "Deleting conversation history", "index", d.Index, "dialog", d.Title)
		if e.dryRun {
			return nil
		}
		return e.actions.DeleteHistory(ctx, d.Peer, true)

	default:
		e.log.InfoContext(ctx, "Deleting dialog of unknown kind", "index", d.Index, "dialog", d.Title)
		if e.dryRun {
			return nil
		}
		if d.Peer == nil {
			return fmt.Errorf("dialog %q has no input peer", d.Title)
		}
		return e.actions.DeleteDialog(ctx, d.Peer)
	}
}

// allowsFallback сообщает, допускает ли ошибка самоудаления переход к
// общему удалению диалога. FLOOD_WAIT не допускает: это сигнал
// backpressure, его обрабатывает политика повторов, а не fallback.
func allowsFallback(err error) bool {
	if _, ok := tgerr.AsFloodWait(err); ok {
		return false
	}
	_, ok := tgerr.As(err)
	return ok
}
