package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peswahq/ussd-simulator/plugin/ussd"
	"github.com/peswahq/ussd-simulator/store"
)

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	session := s.CreateSession("0546628393", ussd.NetworkMTN)
	require.NotNil(t, session)

	assert.NotEmpty(t, session.ID)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, "0546628393", session.PhoneNumber)
	assert.Equal(t, ussd.NetworkMTN, session.Network)
	assert.Equal(t, store.InitialScreen, session.CurrentScreen)
	assert.True(t, session.IsActive)
	assert.Empty(t, session.ConversationHistory)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, session.CreatedAt, session.LastActivity)

	other := s.CreateSession("0546628393", ussd.NetworkMTN)
	assert.NotEqual(t, session.ID, other.ID)
	assert.NotEqual(t, session.SessionID, other.SessionID)
}

func TestSessionIdentityStability(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	created := s.CreateSession("0546628393", ussd.NetworkVodafone)

	s.AppendTurn(created.ID, &store.ConversationEntry{
		Timestamp: time.Now(),
		Request:   &ussd.RootRequest{USSDReq: ussd.Request{Msg: "*123#"}},
		UserInput: "*123#",
	})
	screen := "Main Menu"
	s.UpdateSession(created.ID, &store.UpdateSession{CurrentScreen: &screen})
	s.ResetSession(created.ID)

	got := s.GetSession(created.ID)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.SessionID, got.SessionID)
	assert.Equal(t, created.PhoneNumber, got.PhoneNumber)
	assert.Equal(t, created.Network, got.Network)
}

func TestResetSessionIdempotence(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	session := s.CreateSession("0546628393", ussd.NetworkMTN)
	s.AppendTurn(session.ID, &store.ConversationEntry{Timestamp: time.Now(), UserInput: "*123#"})
	screen := "Loans"
	s.UpdateSession(session.ID, &store.UpdateSession{CurrentScreen: &screen})

	for i := 0; i < 2; i++ {
		s.ResetSession(session.ID)
		got := s.GetSession(session.ID)
		require.NotNil(t, got)
		assert.Empty(t, got.ConversationHistory)
		assert.Equal(t, store.InitialScreen, got.CurrentScreen)
	}
}

func TestAppendTurn(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	session := s.CreateSession("0546628393", ussd.NetworkMTN)

	entries := []string{"*123#", "1", "2"}
	for _, input := range entries {
		s.AppendTurn(session.ID, &store.ConversationEntry{
			Timestamp: time.Now(),
			Request:   &ussd.RootRequest{USSDReq: ussd.Request{Msg: input}},
			UserInput: input,
		})
	}

	got := s.GetSession(session.ID)
	require.NotNil(t, got)
	require.Len(t, got.ConversationHistory, 3)
	for i, input := range entries {
		assert.Equal(t, input, got.ConversationHistory[i].UserInput)
	}
	assert.False(t, got.LastActivity.Before(session.LastActivity))
}

func TestListSessionsOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	a := s.CreateSession("0546628393", ussd.NetworkMTN)
	time.Sleep(2 * time.Millisecond)
	b := s.CreateSession("0244000000", ussd.NetworkVodafone)
	time.Sleep(2 * time.Millisecond)

	// Touch A again: it becomes the most recently active.
	s.AppendTurn(a.ID, &store.ConversationEntry{Timestamp: time.Now(), UserInput: "1"})

	list := s.ListSessions()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestUpdateSessionMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	screen := "anything"
	// Deleted-then-updated races from the UI must not panic or error.
	s.UpdateSession("no-such-id", &store.UpdateSession{CurrentScreen: &screen})
	s.AppendTurn("no-such-id", &store.ConversationEntry{UserInput: "1"})
	s.ResetSession("no-such-id")
	assert.Nil(t, s.GetSession("no-such-id"))
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	session := s.CreateSession("0546628393", ussd.NetworkMTN)
	s.DeleteSession(session.ID)
	assert.Nil(t, s.GetSession(session.ID))
	assert.Empty(t, s.ListSessions())
}

func TestSessionSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewTestingStore(ctx, t)

	session := s.CreateSession("0546628393", ussd.NetworkMTN)
	snapshot := s.GetSession(session.ID)
	snapshot.CurrentScreen = "tampered"
	snapshot.ConversationHistory = append(snapshot.ConversationHistory, &store.ConversationEntry{UserInput: "x"})

	got := s.GetSession(session.ID)
	assert.Equal(t, store.InitialScreen, got.CurrentScreen)
	assert.Empty(t, got.ConversationHistory)
}
