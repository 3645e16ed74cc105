package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gotd/td/tg"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// actionsRecorder — запись вызовов ports.DialogActions. Каждому вызову
// соответствует строковая метка, по которой проверяется и состав,
// и порядок мутаций.
type actionsRecorder struct {
	calls []string

	leaveChannelErr error
	leaveLegacyErr  error
	deleteHistErr   error
	deleteDialogErr error
}

func (r *actionsRecorder) LeaveChannel(_ context.Context, channel *tg.Channel) error {
	r.calls = append(r.calls, "leave_channel:"+channel.Title)
	return r.leaveChannelErr
}

func (r *actionsRecorder) LeaveLegacyChat(_ context.Context, chat *tg.Chat) error {
	r.calls = append(r.calls, "leave_legacy:"+chat.Title)
	return r.leaveLegacyErr
}

func (r *actionsRecorder) DeleteHistory(_ context.Context, peer tg.InputPeerClass, revoke bool) error {
	r.calls = append(r.calls, fmt.Sprintf("delete_history:%s:revoke=%v", peerKey(peer), revoke))
	return r.deleteHistErr
}

func (r *actionsRecorder) DeleteDialog(_ context.Context, peer tg.InputPeerClass) error {
	r.calls = append(r.calls, "delete_dialog:"+peerKey(peer))
	return r.deleteDialogErr
}

func peerKey(peer tg.InputPeerClass) string {
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		return fmt.Sprintf("user%d", p.UserID)
	case *tg.InputPeerChat:
		return fmt.Sprintf("chat%d", p.ChatID)
	case *tg.InputPeerChannel:
		return fmt.Sprintf("channel%d", p.ChannelID)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", p)
	}
}

// sliceIterator отдает заранее заготовленные диалоги и считает
// обращения к Next, чтобы проверять ленивость потока.
type sliceIterator struct {
	dialogs   []domain.Dialog
	pos       int
	cur       domain.Dialog
	nextCalls int
	err       error
}

func (it *sliceIterator) Next(_ context.Context) bool {
	it.nextCalls++
	if it.pos >= len(it.dialogs) {
		return false
	}
	it.cur = it.dialogs[it.pos]
	it.pos++
	return true
}

func (it *sliceIterator) Dialog() domain.Dialog { return it.cur }

func (it *sliceIterator) Err() error { return it.err }

type sliceSource struct {
	it *sliceIterator
}

func (s *sliceSource) IterDialogs(_ context.Context) ports.DialogIterator { return s.it }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Заготовки сущностей для тестов.
func testChannel(id int64, title string) *tg.Channel {
	return &tg.Channel{ID: id, AccessHash: id * 100, Title: title}
}

func testChat(id int64, title string) *tg.Chat {
	return &tg.Chat{ID: id, Title: title}
}

func testUser(id int64, first string) *tg.User {
	return &tg.User{ID: id, AccessHash: id * 100, FirstName: first}
}

func channelDialog(id int64, title string) domain.Dialog {
	c := testChannel(id, title)
	return domain.Dialog{Title: title, Entity: c, Peer: &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash}}
}

func chatDialog(id int64, title string) domain.Dialog {
	c := testChat(id, title)
	return domain.Dialog{Title: title, Entity: c, Peer: &tg.InputPeerChat{ChatID: c.ID}}
}

func userDialog(id int64, name string) domain.Dialog {
	u := testUser(id, name)
	return domain.Dialog{Title: name, Entity: u, Peer: &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}}
}
