package telegram

import (
	"context"
	"testing"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LeaveChannel(t *testing.T) {
	var got tg.InputChannelClass
	api := &mockAPI{
		channelsLeaveChannel: func(_ context.Context, channel tg.InputChannelClass) (tg.UpdatesClass, error) {
			got = channel
			return &tg.Updates{}, nil
		},
	}

	err := newTestClient(api).LeaveChannel(context.Background(), &tg.Channel{ID: 7, AccessHash: 700})

	require.NoError(t, err)
	assert.Equal(t, &tg.InputChannel{ChannelID: 7, AccessHash: 700}, got)
}

func TestClient_LeaveLegacyChat_RemovesSelf(t *testing.T) {
	var got *tg.MessagesDeleteChatUserRequest
	api := &mockAPI{
		messagesDeleteChatUser: func(_ context.Context, req *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error) {
			got = req
			return &tg.Updates{}, nil
		},
	}

	err := newTestClient(api).LeaveLegacyChat(context.Background(), &tg.Chat{ID: 8, Title: "Old"})

	require.NoError(t, err)
	assert.Equal(t, int64(8), got.ChatID)
	assert.IsType(t, &tg.InputUserSelf{}, got.UserID)
}

func TestClient_DeleteHistory_FullWipe(t *testing.T) {
	var got *tg.MessagesDeleteHistoryRequest
	api := &mockAPI{
		messagesDeleteHistory: func(_ context.Context, req *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error) {
			got = req
			return &tg.MessagesAffectedHistory{}, nil
		},
	}
	peer := &tg.InputPeerUser{UserID: 9, AccessHash: 900}

	err := newTestClient(api).DeleteHistory(context.Background(), peer, true)

	require.NoError(t, err)
	assert.Equal(t, peer, got.Peer)
	// Полная зачистка: вся история, у обеих сторон, без локального скрытия.
	assert.Zero(t, got.MaxID)
	assert.False(t, got.JustClear)
	assert.True(t, got.Revoke)
}

func TestClient_DeleteDialog(t *testing.T) {
	var got *tg.MessagesDeleteHistoryRequest
	api := &mockAPI{
		messagesDeleteHistory: func(_ context.Context, req *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error) {
			got = req
			return &tg.MessagesAffectedHistory{}, nil
		},
	}
	peer := &tg.InputPeerChat{ChatID: 11}

	err := newTestClient(api).DeleteDialog(context.Background(), peer)

	require.NoError(t, err)
	assert.Equal(t, peer, got.Peer)
	assert.False(t, got.Revoke)
}
