package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbush/batchinfer/internal/domain"
)

func TestHistory_AppendList(t *testing.T) {
	h, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, h.Append(ctx, domain.Snapshot{RunID: "old", Status: domain.StatusComplete, Timestamp: base, Processed: 3}))
	require.NoError(t, h.Append(ctx, domain.Snapshot{RunID: "new", Status: domain.StatusFailed, Timestamp: base.Add(time.Hour), Failed: 2}))

	runs, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, 2, runs[0].Failed)
	assert.Equal(t, "old", runs[1].RunID)
	assert.Equal(t, 3, runs[1].Processed)

	runs, err = h.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
