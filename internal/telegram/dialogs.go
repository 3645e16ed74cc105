package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gotd/td/tg"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// IterDialogs возвращает ленивый итератор по диалогам аккаунта.
func (c *Client) IterDialogs(ctx context.Context) ports.DialogIterator {
	return &dialogIterator{
		api:        c.tgRunner.API(),
		log:        c.log,
		pageSize:   c.dialogPageSize,
		offsetPeer: &tg.InputPeerEmpty{},
	}
}

// dialogIterator постранично подгружает messages.getDialogs.
// Список не материализуется целиком, и итератор поддерживает раннюю
// остановку: непотребленные страницы просто не запрашиваются.
type dialogIterator struct {
	api      telegramAPI
	log      *slog.Logger
	pageSize int

	offsetDate int
	offsetID   int
	offsetPeer tg.InputPeerClass

	buf  []domain.Dialog
	cur  domain.Dialog
	done bool
	err  error
}

func (it *dialogIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for len(it.buf) == 0 {
		if it.done {
			return false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}
		if !it.fetch(ctx) {
			return false
		}
	}

	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

func (it *dialogIterator) Dialog() domain.Dialog { return it.cur }

func (it *dialogIterator) Err() error { return it.err }

// fetch загружает очередную страницу и пополняет буфер.
func (it *dialogIterator) fetch(ctx context.Context) bool {
	it.log.DebugContext(ctx, "Executing API call: MessagesGetDialogs",
		"offset_id", it.offsetID, "offset_date", it.offsetDate, "limit", it.pageSize)

	res, err := it.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetDate: it.offsetDate,
		OffsetID:   it.offsetID,
		OffsetPeer: it.offsetPeer,
		Limit:      it.pageSize,
	})
	if err != nil {
		it.err = fmt.Errorf("messages.getDialogs: %w", err)
		return false
	}

	var (
		dialogs  []tg.DialogClass
		messages []tg.MessageClass
		chats    []tg.ChatClass
		users    []tg.UserClass
		lastPage bool
	)
	switch r := res.(type) {
	case *tg.MessagesDialogs:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
		lastPage = true
	case *tg.MessagesDialogsSlice:
		dialogs, messages, chats, users = r.Dialogs, r.Messages, r.Chats, r.Users
	case *tg.MessagesDialogsNotModified:
		it.done = true
		return true
	default:
		it.err = fmt.Errorf("unexpected messages.getDialogs result %T", res)
		return false
	}

	if len(dialogs) == 0 {
		it.done = true
		return true
	}

	ent := newEntitySet(users, chats)

	var (
		lastPeer tg.PeerClass
		lastTop  int
	)
	for _, dc := range dialogs {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			// Папки и прочие служебные записи диалогами не считаются.
			continue
		}
		lastPeer, lastTop = d.Peer, d.TopMessage
		it.buf = append(it.buf, ent.dialog(d.Peer))
	}

	if lastPage || len(dialogs) < it.pageSize {
		it.done = true
		return true
	}

	// Смещения следующей страницы берутся из последнего диалога и даты
	// его верхнего сообщения.
	it.offsetID = lastTop
	it.offsetDate = topMessageDate(messages, lastPeer, lastTop)
	if p := ent.inputPeer(lastPeer); p != nil {
		it.offsetPeer = p
	}
	return true
}

// entitySet — сущности одной страницы выдачи, проиндексированные по ID.
type entitySet struct {
	users map[int64]*tg.User
	chats map[int64]tg.ChatClass
}

func newEntitySet(users []tg.UserClass, chats []tg.ChatClass) *entitySet {
	s := &entitySet{
		users: make(map[int64]*tg.User, len(users)),
		chats: make(map[int64]tg.ChatClass, len(chats)),
	}
	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok {
			s.users[u.ID] = u
		}
	}
	for _, cc := range chats {
		s.chats[cc.GetID()] = cc
	}
	return s
}

// dialog собирает доменный диалог для peer: отображаемое имя, сущность
// и input-peer. Несопоставимые peer дают диалог без сущности, который
// классифицируется как неизвестный.
func (s *entitySet) dialog(peer tg.PeerClass) domain.Dialog {
	switch p := peer.(type) {
	case *tg.PeerUser:
		u, ok := s.users[p.UserID]
		if !ok {
			return domain.Dialog{}
		}
		return domain.Dialog{
			Title:  displayName(u),
			Entity: u,
			Peer:   &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash},
		}

	case *tg.PeerChat:
		switch c := s.chats[p.ChatID].(type) {
		case *tg.Chat:
			return domain.Dialog{
				Title:  c.Title,
				Entity: c,
				Peer:   &tg.InputPeerChat{ChatID: c.ID},
			}
		case *tg.ChatForbidden:
			// Доступ к группе потерян; остается общее удаление диалога.
			return domain.Dialog{
				Title:  c.Title,
				Entity: c,
				Peer:   &tg.InputPeerChat{ChatID: c.ID},
			}
		default:
			return domain.Dialog{Peer: &tg.InputPeerChat{ChatID: p.ChatID}}
		}

	case *tg.PeerChannel:
		switch c := s.chats[p.ChannelID].(type) {
		case *tg.Channel:
			return domain.Dialog{
				Title:  c.Title,
				Entity: c,
				Peer:   &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash},
			}
		case *tg.ChannelForbidden:
			return domain.Dialog{
				Title:  c.Title,
				Entity: c,
				Peer:   &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash},
			}
		default:
			return domain.Dialog{}
		}

	default:
		return domain.Dialog{}
	}
}

// inputPeer возвращает input-peer для peer или nil, если сущность
// страницы не содержит нужного access hash.
func (s *entitySet) inputPeer(peer tg.PeerClass) tg.InputPeerClass {
	d := s.dialog(peer)
	return d.Peer
}

// displayName собирает отображаемое имя пользователя.
func displayName(u *tg.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Username
}

// topMessageDate находит дату верхнего сообщения диалога на странице.
func topMessageDate(messages []tg.MessageClass, peer tg.PeerClass, id int) int {
	for _, mc := range messages {
		switch m := mc.(type) {
		case *tg.Message:
			if m.ID == id && samePeer(m.PeerID, peer) {
				return m.Date
			}
		case *tg.MessageService:
			if m.ID == id && samePeer(m.PeerID, peer) {
				return m.Date
			}
		}
	}
	return 0
}

func samePeer(a, b tg.PeerClass) bool {
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *tg.PeerUser:
		y, ok := b.(*tg.PeerUser)
		return ok && x.UserID == y.UserID
	case *tg.PeerChat:
		y, ok := b.(*tg.PeerChat)
		return ok && x.ChatID == y.ChatID
	case *tg.PeerChannel:
		y, ok := b.(*tg.PeerChannel)
		return ok && x.ChannelID == y.ChannelID
	default:
		return false
	}
}
