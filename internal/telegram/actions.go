package telegram

import (
	"context"

	"github.com/gotd/td/tg"
)

// LeaveChannel выходит из канала или супергруппы.
func (c *Client) LeaveChannel(ctx context.Context, channel *tg.Channel) error {
	c.log.DebugContext(ctx, "Executing API call: ChannelsLeaveChannel", "channel_id", channel.ID)
	_, err := c.tgRunner.API().ChannelsLeaveChannel(ctx, &tg.InputChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	})
	return err
}

// LeaveLegacyChat удаляет собственный аккаунт из группы старого формата.
// У платформы это отдельная операция, не совпадающая с выходом из
// канала/супергруппы.
func (c *Client) LeaveLegacyChat(ctx context.Context, chat *tg.Chat) error {
	c.log.DebugContext(ctx, "Executing API call: MessagesDeleteChatUser", "chat_id", chat.ID)
	_, err := c.tgRunner.API().MessagesDeleteChatUser(ctx, &tg.MessagesDeleteChatUserRequest{
		ChatID: chat.ID,
		UserID: &tg.InputUserSelf{},
	})
	return err
}

// DeleteHistory удаляет историю переписки. При revoke платформа
// удаляет сообщения у обеих сторон, а не просто скрывает их локально.
func (c *Client) DeleteHistory(ctx context.Context, peer tg.InputPeerClass, revoke bool) error {
	c.log.DebugContext(ctx, "Executing API call: MessagesDeleteHistory", "revoke", revoke)
	_, err := c.tgRunner.API().MessagesDeleteHistory(ctx, &tg.MessagesDeleteHistoryRequest{
		Peer:      peer,
		MaxID:     0,
		JustClear: false,
		Revoke:    revoke,
	})
	return err
}

// DeleteDialog — общее удаление диалога, единственный вариант для
// сущностей, к которым не применима ни одна специализированная операция.
func (c *Client) DeleteDialog(ctx context.Context, peer tg.InputPeerClass) error {
	c.log.DebugContext(ctx, "Executing API call: MessagesDeleteHistory (generic delete)")
	_, err := c.tgRunner.API().MessagesDeleteHistory(ctx, &tg.MessagesDeleteHistoryRequest{
		Peer:      peer,
		MaxID:     0,
		JustClear: false,
		Revoke:    false,
	})
	return err
}
