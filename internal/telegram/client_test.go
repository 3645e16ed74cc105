package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFlow struct {
	called bool
	err    error
}

func (m *mockFlow) Run(_ context.Context, _ auth.FlowClient) error {
	m.called = true
	return m.err
}

func selfUser() []tg.UserClass {
	return []tg.UserClass{&tg.User{ID: 1, Self: true, FirstName: "Me", Username: "me"}}
}

func TestClient_Run_ValidSession(t *testing.T) {
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
			return selfUser(), nil
		},
	}
	flow := &mockFlow{}
	c := newTestClient(api)
	c.authFlow = flow

	var ran bool
	err := c.Run(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, flow.called, "no interactive auth expected for a valid session")
}

func TestClient_Run_InvalidSessionWithoutTerminal(t *testing.T) {
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
			return nil, errors.New("rpc error code 401: AUTH_KEY_UNREGISTERED")
		},
	}
	c := newTestClient(api)
	c.authFlow = &mockFlow{}
	c.isTerminal = func(int) bool { return false }

	err := c.Run(context.Background(), func(context.Context) error {
		t.Fatal("callback must not run without auth")
		return nil
	})

	require.Error(t, err)
}

func TestClient_Run_InteractiveAuth(t *testing.T) {
	authed := false
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
			if authed {
				return selfUser(), nil
			}
			return nil, errors.New("rpc error code 401: AUTH_KEY_UNREGISTERED")
		},
	}
	flow := &mockFlow{}
	c := newTestClient(api)
	c.authFlow = flow
	c.isTerminal = func(int) bool { return true }

	var ran bool
	err := c.Run(context.Background(), func(context.Context) error {
		authed = true
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, flow.called)
	assert.True(t, ran)
}

func TestClient_Run_AuthFlowFailure(t *testing.T) {
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
			return nil, errors.New("rpc error code 401: AUTH_KEY_UNREGISTERED")
		},
	}
	flow := &mockFlow{err: errors.New("wrong code")}
	c := newTestClient(api)
	c.authFlow = flow
	c.isTerminal = func(int) bool { return true }

	err := c.Run(context.Background(), func(context.Context) error { return nil })

	require.Error(t, err)
	assert.True(t, flow.called)
}

func TestClient_Self(t *testing.T) {
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, req []tg.InputUserClass) ([]tg.UserClass, error) {
			require.Len(t, req, 1)
			assert.IsType(t, &tg.InputUserSelf{}, req[0])
			return selfUser(), nil
		},
	}

	u, err := newTestClient(api).Self(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "me", u.Username)
}

func TestClient_Self_EmptyResponse(t *testing.T) {
	api := &mockAPI{
		usersGetUsers: func(_ context.Context, _ []tg.InputUserClass) ([]tg.UserClass, error) {
			return nil, nil
		},
	}

	_, err := newTestClient(api).Self(context.Background())

	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIID: 1, APIHash: "hash", PhoneNumber: "+10000000000", SessionPath: "tg.session"})

	assert.NotEmpty(t, c.ID())
	assert.Equal(t, defaultDialogPageSize, c.dialogPageSize)
	assert.Equal(t, defaultHistoryPageSize, c.historyPageSize)
}
