package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRoundTrip(t *testing.T) {
	s := openMigratedStore(t)
	siteID := insertSite(t, s, "store1")
	require.True(t, s.HistoryEnabled())

	require.NoError(t, s.Append("qrm_abc123def456", siteID, "user-1", "user", "how much is MLV?"))
	require.NoError(t, s.Append("qrm_abc123def456", siteID, "user-1", "assistant", "From $209.21 per roll."))

	history, err := s.History("qrm_abc123def456")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "how much is MLV?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "From $209.21 per roll.", history[1].Content)
}

func TestConversationHistoryKeepsLastTen(t *testing.T) {
	s := openMigratedStore(t)
	siteID := insertSite(t, s, "store1")

	for i := 1; i <= 11; i++ {
		require.NoError(t, s.Append("qrm_abc123def456", siteID, "", "user", fmt.Sprintf("message %d", i)))
	}

	history, err := s.History("qrm_abc123def456")
	require.NoError(t, err)
	require.Len(t, history, 10)

	// Oldest first, and the very first message has rolled off.
	assert.Equal(t, "message 2", history[0].Content)
	assert.Equal(t, "message 11", history[9].Content)
}

func TestConversationHistoryUnknownID(t *testing.T) {
	s := openMigratedStore(t)

	history, err := s.History("qrm_000000000000")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationDisabledWithoutTables(t *testing.T) {
	s := openCatalogOnlyStore(t)
	siteID := insertSite(t, s, "store1")
	assert.False(t, s.HistoryEnabled())

	// Both sides no-op rather than erroring so chat keeps working.
	require.NoError(t, s.Append("qrm_abc123def456", siteID, "", "user", "hello"))
	history, err := s.History("qrm_abc123def456")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMigrateEnablesHistory(t *testing.T) {
	s := openCatalogOnlyStore(t)
	require.False(t, s.HistoryEnabled())

	require.NoError(t, s.Migrate())
	assert.True(t, s.HistoryEnabled())

	siteID := insertSite(t, s, "store1")
	require.NoError(t, s.Append("qrm_abc123def456", siteID, "", "user", "hello"))
	history, err := s.History("qrm_abc123def456")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
