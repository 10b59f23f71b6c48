package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mcp-recall/internal/chroma"
	"mcp-recall/internal/config"
	"mcp-recall/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadReplaysEveryRecord(t *testing.T) {
	index := &fakeIndex{}
	cfg := config.MemoryConfig{Dir: t.TempDir()}
	svc := newTestService(t, cfg, index)
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{UserID: "alice"}, teamRecord("s1", "a", "b"))
	require.NoError(t, err)
	_, err = svc.Store(ctx, identity.Identity{UserID: "alice"}, teamRecord("s2", "c", "d"))
	require.NoError(t, err)
	_, err = svc.Store(ctx, identity.Identity{UserID: "bob"}, teamRecord("s1", "e", "f"))
	require.NoError(t, err)
	storedAdds := index.addCount()

	report, err := svc.ReloadFromJournal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.RecordsLoaded)
	assert.Zero(t, report.FilesFailed)
	assert.Equal(t, storedAdds+3, index.addCount())
}

// Re-running reconciliation re-adds every record; the journal is intact
// and the vector side receives duplicates. That duplication is the
// documented behavior, not a bug to paper over here.
func TestReloadTwiceDuplicatesVectorAdds(t *testing.T) {
	index := &fakeIndex{}
	cfg := config.MemoryConfig{Dir: t.TempDir()}
	svc := newTestService(t, cfg, index)
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{UserID: "alice"}, teamRecord("s1", "a", "b"))
	require.NoError(t, err)
	baseline := index.addCount()

	first, err := svc.ReloadFromJournal(ctx)
	require.NoError(t, err)
	second, err := svc.ReloadFromJournal(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.RecordsLoaded, second.RecordsLoaded)
	assert.Equal(t, baseline+2, index.addCount())

	// Both replays used the same stable record ID, so an upserting
	// backend collapses them; the journal lost nothing either way.
	records, err := svc.SessionContext(ctx, identity.Identity{UserID: "alice"}, "s1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, index.addedIDs[baseline], index.addedIDs[baseline+1])
}

func TestReloadCountsUnparseableFiles(t *testing.T) {
	index := &fakeIndex{}
	dir := t.TempDir()
	svc := newTestService(t, config.MemoryConfig{Dir: dir}, index)
	ctx := context.Background()

	_, err := svc.Store(ctx, identity.Identity{UserID: "alice"}, teamRecord("good", "a", "b"))
	require.NoError(t, err)

	badPath := filepath.Join(dir, "alice", "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte("not json"), 0o644))

	report, err := svc.ReloadFromJournal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.RecordsLoaded)
	assert.Equal(t, 1, report.FilesFailed)
}

func TestReloadRejectedWhileDegraded(t *testing.T) {
	index := &fakeIndex{readyErr: chroma.ErrNotReady}
	svc := newTestService(t, config.MemoryConfig{}, index)

	_, err := svc.ReloadFromJournal(context.Background())
	assert.ErrorIs(t, err, ErrVectorUnavailable)
}
