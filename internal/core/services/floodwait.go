package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/gotd/td/tgerr"

	"telegram-cleaner/internal/domain"
)

const (
	// DefaultMaxAttempts — максимум попыток одной операции при FLOOD_WAIT.
	DefaultMaxAttempts = 5
	// DefaultActionPause — пауза после успешного действия, снижающая
	// риск следующего rate limit.
	DefaultActionPause = 350 * time.Millisecond
)

// SleepFunc — прерываемая пауза. Подменяется в тестах.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep — пауза, уважающая отмену контекста.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FloodWaitPolicy повторяет операцию над одним диалогом при FLOOD_WAIT,
// выдерживая продиктованную сервером паузу перед каждой новой попыткой.
// Состояние повторов живет в пределах одного диалога и никогда не
// разделяется между диалогами.
type FloodWaitPolicy struct {
	maxAttempts int
	actionPause time.Duration
	sleep       SleepFunc
	log         *slog.Logger
}

// PolicyOption — функциональная опция для настройки политики повторов.
type PolicyOption func(*FloodWaitPolicy)

// WithMaxAttempts устанавливает максимум попыток при rate limit.
func WithMaxAttempts(n int) PolicyOption {
	return func(p *FloodWaitPolicy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithActionPause устанавливает паузу после успешного действия.
func WithActionPause(d time.Duration) PolicyOption {
	return func(p *FloodWaitPolicy) {
		if d >= 0 {
			p.actionPause = d
		}
	}
}

// WithSleep подменяет функцию паузы.
func WithSleep(f SleepFunc) PolicyOption {
	return func(p *FloodWaitPolicy) {
		if f != nil {
			p.sleep = f
		}
	}
}

// WithPolicyLogger устанавливает логгер политики.
func WithPolicyLogger(l *slog.Logger) PolicyOption {
	return func(p *FloodWaitPolicy) {
		if l != nil {
			p.log = l
		}
	}
}

// NewFloodWaitPolicy создает политику повторов с настройками по умолчанию.
func NewFloodWaitPolicy(opts ...PolicyOption) *FloodWaitPolicy {
	p := &FloodWaitPolicy{
		maxAttempts: DefaultMaxAttempts,
		actionPause: DefaultActionPause,
		sleep:       Sleep,
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// retryState — счетчик rate-limit попыток и последняя продиктованная пауза.
type retryState struct {
	attempts int
	lastWait time.Duration
}

// stepKind — решение машины состояний по результату одной попытки.
type stepKind int

const (
	stepDone stepKind = iota
	stepRetry
	stepExhausted
	stepRecoverable
	stepFatal
)

type step struct {
	kind stepKind
	wait time.Duration
	err  error
}

// advance — функция перехода машины состояний: классифицирует результат
// попытки и обновляет состояние повторов. Пауз и побочных эффектов нет,
// поэтому границы повторов проверяются в тестах без настоящих ошибок RPC.
func (p *FloodWaitPolicy) advance(st *retryState, err error) step {
	if err == nil {
		return step{kind: stepDone}
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		st.attempts++
		st.lastWait = wait
		if st.attempts >= p.maxAttempts {
			return step{kind: stepExhausted, err: err}
		}
		return step{kind: stepRetry, wait: wait, err: err}
	}

	if _, ok := tgerr.As(err); ok {
		return step{kind: stepRecoverable, err: err}
	}

	return step{kind: stepFatal, err: err}
}

// Run выполняет attempt с повторами при FLOOD_WAIT и возвращает исход
// обработки диалога. После успешного действия выдерживается фиксированная
// пауза; после отказа — нет: мутация не прошла, и распределять
// дополнительную нагрузку не нужно.
func (p *FloodWaitPolicy) Run(ctx context.Context, d domain.Dialog, attempt func(ctx context.Context) error) domain.Outcome {
	var st retryState

	for {
		res := p.advance(&st, attempt(ctx))

		switch res.kind {
		case stepDone:
			if err := p.sleep(ctx, p.actionPause); err != nil {
				p.log.DebugContext(ctx, "Pause after action interrupted", "dialog", d.Title, "error", err)
			}
			if st.attempts > 0 {
				return domain.OutcomeRetriedThenSucceeded
			}
			return domain.OutcomeSuccess

		case stepRetry:
			p.log.WarnContext(ctx, "Rate limited, waiting before retry",
				"dialog", d.Title, "wait", res.wait, "attempt", st.attempts, "max_attempts", p.maxAttempts)
			if err := p.sleep(ctx, res.wait); err != nil {
				p.log.WarnContext(ctx, "Rate-limit wait interrupted, abandoning dialog",
					"dialog", d.Title, "error", err)
				return domain.OutcomeFatalAbandoned
			}

		case stepExhausted:
			p.log.ErrorContext(ctx, "Max retries reached, skipping dialog",
				"dialog", d.Title, "attempts", st.attempts, "last_wait", st.lastWait)
			return domain.OutcomeRetriesExhausted

		case stepRecoverable:
			p.log.ErrorContext(ctx, "RPC error, skipping dialog",
				"dialog", d.Title, "error", res.err)
			return domain.OutcomeRecoverableAbandoned

		default:
			p.log.ErrorContext(ctx, "Unexpected error, skipping dialog",
				"dialog", d.Title, "error", res.err)
			return domain.OutcomeFatalAbandoned
		}
	}
}
