package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// ResolvePeer находит диалог по @username. Значения "me" и "self"
// указывают на собственный облачный чат. Числовые ID без access hash
// через MTProto не разрешаются — для них возвращается ошибка.
func (c *Client) ResolvePeer(ctx context.Context, target string) (domain.Dialog, error) {
	name := strings.TrimPrefix(strings.TrimSpace(target), "@")
	if name == "" {
		return domain.Dialog{}, errors.New("empty backup target")
	}
	if name == "me" || name == "self" {
		self, err := c.Self(ctx)
		if err != nil {
			return domain.Dialog{}, err
		}
		return domain.Dialog{Title: "Saved Messages", Entity: self, Peer: &tg.InputPeerSelf{}}, nil
	}
	if strings.Trim(name, "-0123456789") == "" {
		return domain.Dialog{}, fmt.Errorf("cannot resolve numeric ID %q, use a @username", target)
	}

	c.log.DebugContext(ctx, "Executing API call: ContactsResolveUsername", "username", name)
	res, err := c.tgRunner.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
	if err != nil {
		return domain.Dialog{}, fmt.Errorf("resolve %q: %w", target, err)
	}

	d := newEntitySet(res.Users, res.Chats).dialog(res.Peer)
	if d.Entity == nil {
		return domain.Dialog{}, fmt.Errorf("%q resolved to an unusable peer", target)
	}
	return d, nil
}

// IterHistory отдает ленивый итератор по истории сообщений диалога,
// от новых к старым.
func (c *Client) IterHistory(ctx context.Context, peer tg.InputPeerClass) ports.MessageIterator {
	return &messageIterator{
		api:      c.tgRunner.API(),
		log:      c.log,
		peer:     peer,
		pageSize: c.historyPageSize,
	}
}

// messageIterator постранично подгружает messages.getHistory.
type messageIterator struct {
	api      telegramAPI
	log      *slog.Logger
	peer     tg.InputPeerClass
	pageSize int

	offsetID int
	buf      []domain.BackupMessage
	cur      domain.BackupMessage
	done     bool
	err      error
}

func (it *messageIterator) Next(ctx context.Context) bool {
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

func (it *messageIterator) Message() domain.BackupMessage { return it.cur }

func (it *messageIterator) Err() error { return it.err }

func (it *messageIterator) fetch(ctx context.Context) bool {
	it.log.DebugContext(ctx, "Executing API call: MessagesGetHistory",
		"offset_id", it.offsetID, "limit", it.pageSize)

	res, err := it.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     it.peer,
		OffsetID: it.offsetID,
		Limit:    it.pageSize,
	})
	if err != nil {
		it.err = fmt.Errorf("messages.getHistory: %w", err)
		return false
	}

	var (
		msgs     []tg.MessageClass
		lastPage bool
	)
	switch r := res.(type) {
	case *tg.MessagesMessages:
		msgs = r.Messages
		lastPage = true
	case *tg.MessagesMessagesSlice:
		msgs = r.Messages
	case *tg.MessagesChannelMessages:
		msgs = r.Messages
	case *tg.MessagesMessagesNotModified:
		it.done = true
		return true
	default:
		it.err = fmt.Errorf("unexpected messages.getHistory result %T", res)
		return false
	}
	_ = lastPage

	if len(msgs) == 0 {
		it.done = true
		return true
	}

	minID := 0
	for _, mc := range msgs {
		m, ok := mc.(*tg.Message)
		if !ok {
			// Служебные сообщения в резервную копию не попадают.
			continue
		}
		if minID == 0 || m.ID < minID {
			minID = m.ID
		}
		it.buf = append(it.buf, backupMessage(m))
	}

	if len(msgs) < it.pageSize || minID == 0 {
		it.done = true
		return true
	}
	it.offsetID = minID
	return true
}

// backupMessage переводит сообщение платформы в модель резервной копии.
func backupMessage(m *tg.Message) domain.BackupMessage {
	bm := domain.BackupMessage{
		ID:   m.ID,
		Text: m.Message,
	}
	if m.Date != 0 {
		bm.Date = time.Unix(int64(m.Date), 0).UTC().Format(time.RFC3339)
	}
	if from, ok := m.GetFromID(); ok {
		if u, ok := from.(*tg.PeerUser); ok {
			bm.SenderID = u.UserID
		}
	}
	if rh, ok := m.GetReplyTo(); ok {
		if r, ok := rh.(*tg.MessageReplyHeader); ok {
			if id, ok := r.GetReplyToMsgID(); ok {
				bm.ReplyToID = id
			}
		}
	}
	if media, ok := m.GetMedia(); ok {
		bm.HasMedia = true
		bm.MediaType = mediaType(media)
	}
	return bm
}

func mediaType(media tg.MessageMediaClass) string {
	switch media.(type) {
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return "document"
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive, *tg.MessageMediaVenue:
		return "geo"
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaWebPage:
		return "webpage"
	case *tg.MessageMediaPoll:
		return "poll"
	default:
		return "other"
	}
}

// Participants возвращает список участников группы или канала.
func (c *Client) Participants(ctx context.Context, d domain.Dialog) ([]domain.Member, error) {
	switch e := d.Entity.(type) {
	case *tg.Channel:
		return c.channelMembers(ctx, &tg.InputChannel{ChannelID: e.ID, AccessHash: e.AccessHash})
	case *tg.Chat:
		return c.chatMembers(ctx, e.ID)
	default:
		return nil, fmt.Errorf("dialog %q has no participant list", d.Title)
	}
}

func (c *Client) channelMembers(ctx context.Context, channel *tg.InputChannel) ([]domain.Member, error) {
	var members []domain.Member
	offset := 0

	for {
		c.log.DebugContext(ctx, "Executing API call: ChannelsGetParticipants", "offset", offset)
		res, err := c.tgRunner.API().ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
			Channel: channel,
			Filter:  &tg.ChannelParticipantsRecent{},
			Offset:  offset,
			Limit:   c.historyPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("channels.getParticipants: %w", err)
		}

		page, ok := res.(*tg.ChannelsChannelParticipants)
		if !ok || len(page.Participants) == 0 {
			return members, nil
		}
		for _, uc := range page.Users {
			if u, ok := uc.(*tg.User); ok {
				members = append(members, member(u))
			}
		}

		offset += len(page.Participants)
		if offset >= page.Count {
			return members, nil
		}
	}
}

func (c *Client) chatMembers(ctx context.Context, chatID int64) ([]domain.Member, error) {
	c.log.DebugContext(ctx, "Executing API call: MessagesGetFullChat", "chat_id", chatID)
	full, err := c.tgRunner.API().MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("messages.getFullChat: %w", err)
	}

	members := make([]domain.Member, 0, len(full.Users))
	for _, uc := range full.Users {
		if u, ok := uc.(*tg.User); ok {
			members = append(members, member(u))
		}
	}
	return members, nil
}

func member(u *tg.User) domain.Member {
	return domain.Member{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Bot:       u.Bot,
		Verified:  u.Verified,
		Premium:   u.Premium,
		Phone:     u.Phone,
	}
}

// UploadToCloud отправляет файл в собственный облачный чат аккаунта.
// Требует живого клиента gotd: в тестах порт подменяется целиком.
func (c *Client) UploadToCloud(ctx context.Context, path string) error {
	if c.raw == nil {
		return errors.New("cloud upload requires a live client")
	}

	api := c.raw.API()
	up := uploader.NewUploader(api)

	c.log.DebugContext(ctx, "Uploading file to cloud chat", "path", path)
	file, err := up.FromPath(ctx, path)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	doc := message.UploadedDocument(file)
	doc.Filename(filepath.Base(path)).ForceFile(true)

	sender := message.NewSender(api).WithUploader(up)
	if _, err := sender.Self().Media(ctx, doc); err != nil {
		return fmt.Errorf("send %s to cloud chat: %w", path, err)
	}
	return nil
}
