package services

import (
	"context"
	"fmt"
	"log/slog"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// CleanerService перебирает диалоги аккаунта строго в порядке выдачи
// потока и применяет к каждому деструктивное действие, соответствующее
// его типу. Ошибка одного диалога никогда не прерывает прогон: все
// ожидаемые отказы гасятся политикой повторов, а нарушение этого
// контракта — дефект программы, который должен всплыть наружу.
type CleanerService struct {
	source ports.DialogSource
	exec   *ActionExecutor
	policy *FloodWaitPolicy
	limit  int
	log    *slog.Logger
}

// CleanerOption — функциональная опция для настройки CleanerService.
type CleanerOption func(*CleanerService)

// WithLimit ограничивает число диалогов, передаваемых в обработку
// (0 — без ограничения).
func WithLimit(n int) CleanerOption {
	return func(s *CleanerService) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithCleanerLogger устанавливает логгер сервиса.
func WithCleanerLogger(l *slog.Logger) CleanerOption {
	return func(s *CleanerService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewCleanerService создает сервис очистки.
func NewCleanerService(source ports.DialogSource, exec *ActionExecutor, policy *FloodWaitPolicy, opts ...CleanerOption) *CleanerService {
	s := &CleanerService{
		source: source,
		exec:   exec,
		policy: policy,
		log:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CleanAll обрабатывает все диалоги аккаунта и возвращает число
// диалогов, переданных в обработку. Отказ по любой причине тоже
// считается обработкой: оператор находит пропущенные диалоги по логам
// и повторяет прогон.
func (s *CleanerService) CleanAll(ctx context.Context) (int, error) {
	it := s.source.IterDialogs(ctx)
	processed := 0

	for {
		// Лимит проверяется до обращения к потоку, чтобы лишний диалог
		// даже не подгружался.
		if s.limit > 0 && processed >= s.limit {
			s.log.InfoContext(ctx, "Dialog limit reached, stopping", "limit", s.limit)
			break
		}
		if !it.Next(ctx) {
			break
		}

		d := it.Dialog()
		if d.Title == "" {
			d.Title = domain.UntitledDialog
		}
		d.Index = processed + 1

		variant := Classify(d.Entity)
		s.log.InfoContext(ctx, "Processing dialog",
			"index", d.Index, "dialog", d.Title, "variant", variant.String())

		outcome := s.policy.Run(ctx, d, func(ctx context.Context) error {
			return s.exec.Execute(ctx, d, variant)
		})
		s.log.DebugContext(ctx, "Dialog finished",
			"index", d.Index, "dialog", d.Title, "outcome", outcome.String())

		processed++

		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
	}

	if err := it.Err(); err != nil {
		return processed, fmt.Errorf("dialog stream failed: %w", err)
	}

	return processed, nil
}
