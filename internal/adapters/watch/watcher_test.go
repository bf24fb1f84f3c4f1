package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func TestWatcher_DetectsHistoryUpdate(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "primitiva.csv")
	require.NoError(t, os.WriteFile(archive, []byte("fecha,n1\n"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(archive, func(path string) {
		changed <- path
	}))

	// Give the watcher time to start.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(archive, []byte("fecha,n1\n2024-03-09,3\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for archive update")
	assert.Equal(t, archive, path)
}

func TestWatcher_DirectoryModeFiltersNonCSV(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "non-CSV files must not trigger the callback")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bonoloto.csv"), []byte("fecha\n"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new archive")
	assert.Equal(t, filepath.Join(dir, "bonoloto.csv"), path)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_FileModeIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "primitiva.csv")
	sibling := filepath.Join(dir, "gordo.csv")
	require.NoError(t, os.WriteFile(archive, []byte("fecha\n"), 0644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(archive, func(path string) {
		changed <- path
	}))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(sibling, []byte("fecha\n"), 0644))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling archives must not trigger a single-file watch")
}

func TestPruneDebounce_DropsOnlyExpiredEntries(t *testing.T) {
	now := time.Now()
	debounce := map[string]time.Time{
		"old.csv":    now.Add(-2 * debounceInterval),
		"stale.csv":  now.Add(-debounceInterval),
		"recent.csv": now.Add(-debounceInterval / 2),
	}

	pruneDebounce(debounce, now)

	assert.NotContains(t, debounce, "old.csv")
	assert.NotContains(t, debounce, "stale.csv")
	assert.Contains(t, debounce, "recent.csv")
}
