package tracking

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbush/batchinfer/internal/domain"
)

func TestLivePublisher_Publish(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewLivePublisher(fs, "output/live_metrics.json")
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, domain.Snapshot{RunID: "r1", Status: domain.StatusRunning, Processed: 2}))
	require.NoError(t, p.Publish(ctx, domain.Snapshot{RunID: "r1", Status: domain.StatusComplete, Processed: 5}))

	snap, err := ReadSnapshot(fs, "output/live_metrics.json")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, snap.Status)
	assert.Equal(t, 5, snap.Processed)

	exists, err := afero.Exists(fs, "output/live_metrics.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must not be left behind")
}

func TestLivePublisher_ReadOnlyFs(t *testing.T) {
	p := NewLivePublisher(afero.NewReadOnlyFs(afero.NewMemMapFs()), "live.json")
	assert.Error(t, p.Publish(context.Background(), domain.Snapshot{}))
}

func TestReadSnapshot_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "live.json", []byte(`{"status":`), 0644))
	_, err := ReadSnapshot(fs, "live.json")
	assert.Error(t, err)
}

func TestHistoryFile_AppendList(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := NewHistoryFile(fs, "output/run_history.jsonl")
	ctx := context.Background()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Append(ctx, domain.Snapshot{RunID: "a", Status: domain.StatusComplete, Timestamp: ts}))
	require.NoError(t, h.Append(ctx, domain.Snapshot{RunID: "b", Status: domain.StatusCancelled, Timestamp: ts}))

	data, err := afero.ReadFile(fs, "output/run_history.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	// a torn line from a crashed writer is ignored
	f, err := fs.OpenFile("output/run_history.jsonl", os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"run_id":"c"` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	runs, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID)
	assert.Equal(t, "a", runs[1].RunID)
	assert.True(t, runs[1].Timestamp.Equal(ts))

	runs, err = h.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestHistoryFile_ListMissing(t *testing.T) {
	runs, err := NewHistoryFile(afero.NewMemMapFs(), "none.jsonl").List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSummaryWriter(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewSummaryWriter(fs, "output/predictions.csv")

	report := domain.GroupReport{
		DatasetType: "reviews",
		GroupCol:    "Group",
		Groups: []domain.GroupSummary{
			{Group: "A", Total: 2, Positive: 1, Negative: 1, AvgScore: 0.5},
			{Group: domain.UnknownGroup, Total: 1, Positive: 1, AvgScore: 0.25},
		},
	}
	require.NoError(t, w.WriteSummary(context.Background(), report))

	jsonPath, csvPath := SummaryPaths("output/predictions.csv")
	assert.Equal(t, "output/predictions_group_summary.json", jsonPath)
	assert.Equal(t, "output/predictions_group_summary.csv", csvPath)

	loaded, err := ReadSummary(fs, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, report, loaded)

	data, err := afero.ReadFile(fs, csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "group,total,positive,negative,avg_score", lines[0])
	assert.Equal(t, "A,2,1,1,0.5", lines[1])
	assert.Equal(t, "(unknown),1,1,0,0.25", lines[2])
}

func TestSummaryWriter_NoGroups(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewSummaryWriter(fs, "out.csv")
	require.NoError(t, w.WriteSummary(context.Background(), domain.GroupReport{}))

	jsonPath, _ := SummaryPaths("out.csv")
	exists, err := afero.Exists(fs, jsonPath)
	require.NoError(t, err)
	assert.False(t, exists)
}
