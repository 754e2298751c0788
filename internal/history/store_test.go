package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := Open(path)
	require.NoError(t, err)

	now := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	for i, date := range []string{"20240515", "20240517", "20240516"} {
		require.NoError(t, store.Record(RunRecord{
			RunID:        "run-" + date,
			RunDate:      date,
			ProviderID:   "nate",
			ItemCount:    6,
			TotalSeconds: 144,
			FinishedAt:   now.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"20240517", "20240516", "20240515"}, []string{all[0].RunDate, all[1].RunDate, all[2].RunDate})

	latest, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "run-20240517", latest[0].RunID)
	assert.Equal(t, 144, latest[0].TotalSeconds)

	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	again, err := reopened.List(0)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestStoreRecordRequiresKey(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.Error(t, store.Record(RunRecord{RunDate: "20240517"}))
	require.Error(t, store.Record(RunRecord{RunID: "x"}))
}

func TestStoreSameDateKeepsBothRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(RunRecord{RunID: "a", RunDate: "20240517"}))
	require.NoError(t, store.Record(RunRecord{RunID: "b", RunDate: "20240517"}))
	require.NoError(t, store.Record(RunRecord{RunID: "a", RunDate: "20240517", ItemCount: 5}))

	runs, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID)
	assert.Equal(t, 5, runs[1].ItemCount)
}

func TestStoreListOrdersSameDateByStartTime(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 5, 17, 7, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(RunRecord{RunID: "f3a1", RunDate: "20240517", StartedAt: base.Add(100 * time.Second)}))
	require.NoError(t, store.Record(RunRecord{RunID: "0b9c", RunDate: "20240517", StartedAt: base.Add(200 * time.Second)}))
	require.NoError(t, store.Record(RunRecord{RunID: "zz", RunDate: "20240516", StartedAt: base.Add(time.Hour)}))

	latest, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "0b9c", latest[0].RunID)

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"0b9c", "f3a1", "zz"}, []string{all[0].RunID, all[1].RunID, all[2].RunID})
}

func TestStoreStartTimeOrderingIgnoresZone(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	seoul := time.FixedZone("KST", 9*60*60)
	early := time.Date(2024, 5, 17, 16, 0, 0, 0, seoul) // 07:00 UTC
	late := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(RunRecord{RunID: "late", RunDate: "20240517", StartedAt: late}))
	require.NoError(t, store.Record(RunRecord{RunID: "early", RunDate: "20240517", StartedAt: early}))

	runs, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "late", runs[0].RunID)
}

func TestRecorderReleasesStoreBetweenWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	rec := NewRecorder(path)

	start := time.Date(2024, 5, 17, 7, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Record(RunRecord{RunID: "r1", RunDate: "20240517", StartedAt: start}))

	reader, err := Open(path)
	require.NoError(t, err)
	runs, err := reader.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	require.NoError(t, reader.Close())

	require.NoError(t, rec.Record(RunRecord{RunID: "r2", RunDate: "20240517", StartedAt: start.Add(time.Minute)}))

	reader, err = Open(path)
	require.NoError(t, err)
	defer reader.Close()
	runs, err = reader.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
}

func TestRecorderReportsInvalidRecord(t *testing.T) {
	rec := NewRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.Error(t, rec.Record(RunRecord{RunDate: "20240517"}))

	store, err := Open(rec.Path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
