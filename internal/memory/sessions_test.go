package memory

import (
	"context"
	"errors"
	"testing"

	"mcp-recall/internal/config"
	"mcp-recall/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndDeleteSessions(t *testing.T) {
	index := &fakeIndex{}
	svc := newTestService(t, config.MemoryConfig{DefaultUserID: "alice"}, index)
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{}, teamRecord("s1", "a", "b"))
	require.NoError(t, err)
	_, err = svc.Store(ctx, identity.Identity{}, teamRecord("s2", "c", "d"))
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, identity.Identity{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, sessions)

	found, err := svc.DeleteSession(ctx, identity.Identity{}, "s1")
	require.NoError(t, err)
	assert.True(t, found)

	sessions, err = svc.ListSessions(ctx, identity.Identity{})
	require.NoError(t, err)
	assert.NotContains(t, sessions, "s1")

	// Vector-side entries were removed too.
	require.Len(t, index.deletes, 1)
	assert.Equal(t, "s1", index.deletes[0]["session_id"])
	assert.Equal(t, "alice", index.deletes[0]["user_id"])
}

func TestDeleteAbsentSessionIsNotFoundNotError(t *testing.T) {
	svc := newTestService(t, config.MemoryConfig{DefaultUserID: "alice"}, &fakeIndex{})

	found, err := svc.DeleteSession(context.Background(), identity.Identity{}, "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteSurvivesVectorFailure(t *testing.T) {
	index := &fakeIndex{deleteErr: errors.New("down")}
	svc := newTestService(t, config.MemoryConfig{DefaultUserID: "alice"}, index)
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{}, teamRecord("s1", "a", "b"))
	require.NoError(t, err)

	found, err := svc.DeleteSession(ctx, identity.Identity{}, "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, StateDegraded, svc.State())
}

func TestSessionsAreScopedToCaller(t *testing.T) {
	svc := newTestService(t, config.MemoryConfig{}, &fakeIndex{})
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{UserID: "alice"}, teamRecord("alice-session", "a", "b"))
	require.NoError(t, err)
	_, err = svc.Store(ctx, identity.Identity{UserID: "bob"}, teamRecord("bob-session", "c", "d"))
	require.NoError(t, err)

	aliceSessions, err := svc.ListSessions(ctx, identity.Identity{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-session"}, aliceSessions)

	bobRecords, err := svc.SessionContext(ctx, identity.Identity{UserID: "bob"}, "bob-session")
	require.NoError(t, err)
	require.Len(t, bobRecords, 1)
	assert.Equal(t, "bob", bobRecords[0].UserID)
}
