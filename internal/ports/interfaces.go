package ports

import (
	"context"

	"telegram-cleaner/internal/domain"
)

// DialogIterator — ленивый однонаправленный итератор по диалогам аккаунта.
// Поток не материализуется целиком: аккаунты бывают очень большими.
type DialogIterator interface {
	// Next подгружает следующий диалог. Возвращает false, когда поток
	// исчерпан или произошла ошибка (см. Err).
	Next(ctx context.Context) bool
	// Dialog возвращает диалог, полученный последним вызовом Next.
	Dialog() domain.Dialog
	Err() error
}

// DialogSource отдает поток диалогов аккаунта.
type DialogSource interface {
	IterDialogs(ctx context.Context) DialogIterator
}

// MessageIterator — ленивый итератор по истории сообщений одного диалога.
type MessageIterator interface {
	Next(ctx context.Context) bool
	Message() domain.BackupMessage
	Err() error
}
