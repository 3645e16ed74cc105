package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"

	trm "telegram-cleaner/internal/pkg/term"
)

// telegramAPI — сырые методы API, которые использует приложение.
// Интерфейс позволяет подменять клиент gotd в тестах.
type telegramAPI interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	ChannelsLeaveChannel(ctx context.Context, channel tg.InputChannelClass) (tg.UpdatesClass, error)
	MessagesDeleteChatUser(ctx context.Context, request *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error)
	MessagesDeleteHistory(ctx context.Context, request *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
	ChannelsGetParticipants(ctx context.Context, request *tg.ChannelsGetParticipantsRequest) (tg.ChannelsChannelParticipantsClass, error)
	MessagesGetFullChat(ctx context.Context, chatID int64) (*tg.MessagesChatFull, error)
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	UsersGetUsers(ctx context.Context, request []tg.InputUserClass) ([]tg.UserClass, error)
}

// telegramAuth представляет клиент аутентификации.
type telegramAuth interface {
	auth.FlowClient
}

// telegramRunner определяет зависимости от клиента gotd.
type telegramRunner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() telegramAPI
	Auth() telegramAuth
}

// prodRunner — обертка вокруг реального *telegram.Client для
// удовлетворения интерфейса telegramRunner.
type prodRunner struct {
	*telegram.Client
}

func (p *prodRunner) API() telegramAPI {
	return p.Client.API()
}

func (p *prodRunner) Auth() telegramAuth {
	return p.Client.Auth()
}

// authFlow определяет интерфейс для процесса аутентификации.
type authFlow interface {
	Run(ctx context.Context, client auth.FlowClient) error
}

// Client — клиент Telegram, инкапсулирующий аутентификацию и операции,
// нужные очистке и резервному копированию. Соединение открывается один
// раз и используется строго последовательно одним потоком управления.
type Client struct {
	id         string
	raw        *telegram.Client
	tgRunner   telegramRunner
	authFlow   authFlow
	isTerminal func(fd int) bool
	log        *slog.Logger

	dialogPageSize  int
	historyPageSize int
}

// Config содержит конфигурацию для создания нового клиента.
type Config struct {
	APIID       int
	APIHash     string
	PhoneNumber string
	SessionPath string
}

// ClientOption определяет функциональную опцию для конфигурации клиента.
type ClientOption func(*Client)

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDialogPageSize устанавливает размер страницы при переборе диалогов.
func WithDialogPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.dialogPageSize = n
		}
	}
}

// WithHistoryPageSize устанавливает размер страницы при выгрузке истории.
func WithHistoryPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.historyPageSize = n
		}
	}
}

const (
	defaultDialogPageSize  = 100
	defaultHistoryPageSize = 100
)

// NewClient создает новый экземпляр Client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	// Аутентификатор для терминала.
	termAuth := trm.NewTerminal(cfg.PhoneNumber)

	// Хранилище сессии.
	sessionStorage := &session.FileStorage{Path: cfg.SessionPath}

	tgClient := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: sessionStorage,
	})

	c := &Client{
		id:              uuid.NewString(),
		raw:             tgClient,
		tgRunner:        &prodRunner{Client: tgClient},
		authFlow:        auth.NewFlow(termAuth, auth.SendCodeOptions{}),
		isTerminal:      func(fd int) bool { return term.IsTerminal(fd) },
		log:             slog.Default(),
		dialogPageSize:  defaultDialogPageSize,
		historyPageSize: defaultHistoryPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ID возвращает уникальный идентификатор клиента.
func (c *Client) ID() string {
	return c.id
}

// Run поднимает соединение, проверяет сессию (при необходимости проводя
// интерактивную аутентификацию) и передает управление f. Когда f
// возвращается, соединение закрывается.
func (c *Client) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return c.tgRunner.Run(ctx, func(runCtx context.Context) error {
		if err := c.ensureAuth(runCtx); err != nil {
			return err
		}
		return f(runCtx)
	})
}

// ensureAuth проверяет статус аутентификации и при необходимости
// запускает интерактивный вход через терминал.
func (c *Client) ensureAuth(ctx context.Context) error {
	if _, err := c.tgRunner.API().UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUserSelf{}}); err != nil {
		// Ожидаемое отсутствие сессии логируем кратко, все прочие,
		// непредвиденные ошибки — с полным выводом.
		if strings.Contains(err.Error(), "AUTH_KEY_UNREGISTERED") {
			c.log.WarnContext(ctx, "Session check failed, attempting interactive auth",
				"client_id", c.id, "reason", "AUTH_KEY_UNREGISTERED")
		} else {
			c.log.WarnContext(ctx, "Session check failed, attempting interactive auth",
				"client_id", c.id, "error", err)
		}
		if !c.isTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("session is invalid and cannot perform interactive auth in non-terminal: %w", err)
		}
		if authErr := c.authFlow.Run(ctx, c.tgRunner.Auth()); authErr != nil {
			return fmt.Errorf("interactive auth failed: %w", authErr)
		}
		c.log.InfoContext(ctx, "Interactive auth successful, session saved", "client_id", c.id)
	}

	c.log.InfoContext(ctx, "Telegram client authenticated and ready", "client_id", c.id)
	return nil
}

// Self возвращает данные авторизованного аккаунта.
func (c *Client) Self(ctx context.Context) (*tg.User, error) {
	c.log.DebugContext(ctx, "Executing API call: UsersGetUsers (self)")
	users, err := c.tgRunner.API().UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUserSelf{}})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.New("empty users response for self")
	}

	u, ok := users[0].(*tg.User)
	if !ok {
		return nil, fmt.Errorf("unexpected self entity type %T", users[0])
	}
	return u, nil
}
