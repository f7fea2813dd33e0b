package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lito-docs/graph/internal/graph"
)

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(fixtureDir)))

	eng := newTestEngine(t, Config{})
	eng.watchDebounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan *BuildResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, dir, func(result *BuildResult, err error) {
			if err == nil {
				builds <- result
			}
		})
	}()

	select {
	case first := <-builds:
		assert.Equal(t, 2, first.Graph.Stats.NodesByType[graph.NodeConcept])
	case <-time.After(5 * time.Second):
		t.Fatal("initial build did not complete")
	}

	// The watcher is registered after the initial build; retry the write
	// until a rebuild picks it up.
	concept := []byte("---\ntype: concept\ncanonical_name: Project\n---\n")
	deadline := time.After(10 * time.Second)
	for {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "concepts", "project.md"), concept, 0o600))
		select {
		case result := <-builds:
			if result.Graph.Stats.NodesByType[graph.NodeConcept] == 3 {
				cancel()
				select {
				case err := <-done:
					assert.NoError(t, err)
				case <-time.After(5 * time.Second):
					t.Fatal("watch did not stop after cancel")
				}
				return
			}
		case <-time.After(200 * time.Millisecond):
		case <-deadline:
			t.Fatal("no rebuild after change")
		}
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Home\n"), 0o600))

	eng := newTestEngine(t, Config{})
	eng.watchDebounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan *BuildResult, 16)
	go func() {
		_ = eng.Watch(ctx, dir, func(result *BuildResult, _ error) { builds <- result })
	}()

	select {
	case <-builds:
	case <-time.After(5 * time.Second):
		t.Fatal("initial build did not complete")
	}

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case <-builds:
		t.Fatal("unexpected rebuild for non-markdown file")
	case <-time.After(300 * time.Millisecond):
	}
}
