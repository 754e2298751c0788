package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsreel/internal/history"
)

func TestParseRunDate(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	now := time.Date(2024, 5, 16, 20, 0, 0, 0, time.UTC)

	got, err := parseRunDate("", seoul, now)
	require.NoError(t, err)
	assert.Equal(t, "20240517", got.Format(dateFlagLayout), "today is taken in the ranking zone")

	got, err = parseRunDate("20240101", seoul, now)
	require.NoError(t, err)
	assert.Equal(t, seoul, got.Location())
	assert.Equal(t, 1, got.Day())

	_, err = parseRunDate("2024-01-01", seoul, now)
	require.Error(t, err)
}

func writeTestConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "newsreel.yaml")
	body := fmt.Sprintf("history:\n  path: %s\nlogging:\n  format: console\n  level: error\n", dbPath)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestHistoryCommandListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(history.RunRecord{RunID: "r1", RunDate: "20240516", ProviderID: "nate", ItemCount: 6, TotalSeconds: 144}))
	require.NoError(t, store.Record(history.RunRecord{RunID: "r2", RunDate: "20240517", ProviderID: "nate", ItemCount: 5, TotalSeconds: 122}))
	require.NoError(t, store.Close())

	cfgPath := writeTestConfig(t, dbPath)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "history", "--limit", "1"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "DATE")
	assert.Contains(t, out.String(), "20240517")
	assert.NotContains(t, out.String(), "20240516")

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "history", "--json", "--limit", "0"})
	require.NoError(t, root.Execute())
	var runs []history.RunRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
}

func TestRunCommandRejectsBadDate(t *testing.T) {
	cfgPath := writeTestConfig(t, filepath.Join(t.TempDir(), "history.db"))
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "run", "--date", "17-05-2024"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYYMMDD")
}

func TestRootRejectsMissingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "history"})
	require.Error(t, root.Execute())
}
