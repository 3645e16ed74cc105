package telegram

import (
	"context"
	"io"
	"log/slog"

	"github.com/gotd/td/tg"
)

// mockAPI — реализация telegramAPI на функциональных полях: тест
// подставляет только те методы, которые ожидает увидеть.
type mockAPI struct {
	messagesGetDialogs      func(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	channelsLeaveChannel    func(ctx context.Context, channel tg.InputChannelClass) (tg.UpdatesClass, error)
	messagesDeleteChatUser  func(ctx context.Context, request *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error)
	messagesDeleteHistory   func(ctx context.Context, request *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error)
	messagesGetHistory      func(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
	channelsGetParticipants func(ctx context.Context, request *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error)
	messagesGetFullChat     func(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error)
	contactsResolveUsername func(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	usersGetUsers           func(ctx context.Context, request []tg.InputUserClass) ([]tg.UserClass, error)
}

func (m *mockAPI) MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	return m.messagesGetDialogs(ctx, request)
}

func (m *mockAPI) ChannelsLeaveChannel(ctx context.Context, channel tg.InputChannelClass) (tg.UpdatesClass, error) {
	return m.channelsLeaveChannel(ctx, channel)
}

func (m *mockAPI) MessagesDeleteChatUser(ctx context.Context, request *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error) {
	return m.messagesDeleteChatUser(ctx, request)
}

func (m *mockAPI) MessagesDeleteHistory(ctx context.Context, request *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error) {
	return m.messagesDeleteHistory(ctx, request)
}

func (m *mockAPI) MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error) {
	return m.messagesGetHistory(ctx, request)
}

func (m *mockAPI) ChannelsGetParticipants(ctx context.Context, request *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error) {
	return m.channelsGetParticipants(ctx, request)
}

func (m *mockAPI) MessagesGetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error) {
	return m.messagesGetFullChat(ctx, chatID)
}

func (m *mockAPI) ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error) {
	return m.contactsResolveUsername(ctx, request)
}

func (m *mockAPI) UsersGetUsers(ctx context.Context, request []tg.InputUserClass) ([]tg.UserClass, error) {
	return m.usersGetUsers(ctx, request)
}

// mockRunner — подмена telegramRunner: Run просто вызывает f,
// аутентификация в тестах не используется.
type mockRunner struct {
	api     *mockAPI
	auth    telegramAuth
	runErr  error
	runFunc func(ctx context.Context, f func(ctx context.Context) error) error
}

func (m *mockRunner) Run(ctx context.Context, f func(ctx context.Context) error) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, f)
	}
	if m.runErr != nil {
		return m.runErr
	}
	return f(ctx)
}

func (m *mockRunner) API() telegramAPI { return m.api }

func (m *mockRunner) Auth() telegramAuth { return m.auth }

// newTestClient собирает Client поверх mockAPI без реального соединения.
func newTestClient(api *mockAPI) *Client {
	return &Client{
		id:              "test-client",
		tgRunner:        &mockRunner{api: api},
		isTerminal:      func(int) bool { return false },
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialogPageSize:  defaultDialogPageSize,
		historyPageSize: defaultHistoryPageSize,
	}
}
