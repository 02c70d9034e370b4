package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, files ...string) <-chan struct{} {
	t.Helper()
	w, err := New(files, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return changes
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{}`), 0o644))

	changes := start(t, schema)
	require.NoError(t, os.WriteFile(schema, []byte(`{"type":"object"}`), 0o644))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_ReportsRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{}`), 0o644))

	changes := start(t, schema)
	tmp := filepath.Join(dir, "schema.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"type":"object"}`), 0o644))
	require.NoError(t, os.Rename(tmp, schema))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{}`), 0o644))

	changes := start(t, schema)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case <-changes:
		t.Fatal("unexpected change")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "nope", "schema.json")}, 0, nil)
	assert.Error(t, err)
}
