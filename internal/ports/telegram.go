package ports

import (
	"context"

	"github.com/gotd/td/tg"

	"telegram-cleaner/internal/domain"
)

// DialogActions — мутирующие операции платформы над диалогами.
// Ровно эти операции использует исполнитель действий; ошибки
// возвращаются как есть, их классификация — забота политики повторов.
type DialogActions interface {
	// LeaveChannel выходит из канала или супергруппы.
	LeaveChannel(ctx context.Context, channel *tg.Channel) error
	// LeaveLegacyChat удаляет собственный аккаунт из группы старого формата.
	LeaveLegacyChat(ctx context.Context, chat *tg.Chat) error
	// DeleteHistory удаляет историю переписки; revoke запрашивает
	// необратимое удаление у обеих сторон.
	DeleteHistory(ctx context.Context, peer tg.InputPeerClass, revoke bool) error
	// DeleteDialog — общее удаление диалога, последний доступный вариант
	// для сущностей без специализированной операции.
	DeleteDialog(ctx context.Context, peer tg.InputPeerClass) error
}

// BackupSource — операции чтения, необходимые для резервного копирования.
type BackupSource interface {
	// ResolvePeer находит диалог по @username; "me" и "self" указывают
	// на собственный облачный чат.
	ResolvePeer(ctx context.Context, target string) (domain.Dialog, error)
	// IterHistory отдает историю сообщений диалога от новых к старым.
	IterHistory(ctx context.Context, peer tg.InputPeerClass) MessageIterator
	// Participants возвращает список участников группы или канала.
	Participants(ctx context.Context, d domain.Dialog) ([]domain.Member, error)
	// UploadToCloud отправляет файл в собственный облачный чат аккаунта.
	UploadToCloud(ctx context.Context, path string) error
}
