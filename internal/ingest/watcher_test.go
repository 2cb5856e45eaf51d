package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSheet(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"input/question_sheets/ch01.png", true},
		{"ch01.PNG", true},
		{"chapter.jpeg", true},
		{"chapter.jpg", true},
		{"book.pdf", true},
		{"notes.txt", false},
		{"answers.xlsx", false},
		{"no-extension", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, isSheet(tc.path))
		})
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}

func TestStartWatcher_InitialScan(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "01_algebra.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "02_geometry.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	require.NoError(t, err)

	got := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case p := <-evCh:
			got[filepath.Base(p)] = true
		case <-timeout:
			t.Fatalf("timed out waiting for initial scan, got %v", got)
		}
	}
	assert.True(t, got["01_algebra.png"])
	assert.True(t, got["02_geometry.pdf"])
	assert.False(t, got["readme.txt"])
}

// A burst of arrivals with a short debounce repeatedly fires the flush while
// new events are still streaming in; every distinct sheet must still come out
// exactly through the event channel, with no concurrent access to the
// debounce state (run with -race).
func TestStartWatcher_BurstyArrivals(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, Debounce: time.Millisecond})
	require.NoError(t, err)

	const n = 200
	for i := 0; i < n; i++ {
		name := filepath.Join(root, fmt.Sprintf("%03d_chapter.png", i))
		require.NoError(t, os.WriteFile(name, []byte("sheet"), 0o644))
	}

	got := map[string]bool{}
	timeout := time.After(10 * time.Second)
	for len(got) < n {
		select {
		case p := <-evCh:
			got[filepath.Base(p)] = true
		case <-timeout:
			t.Fatalf("timed out, received %d of %d sheets", len(got), n)
		}
	}
}

func TestStartWatcher_EmitsNewSheet(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, Debounce: 10 * time.Millisecond})
	require.NoError(t, err)

	path := filepath.Join(root, "03_mechanics.png")
	require.NoError(t, os.WriteFile(path, []byte("sheet"), 0o644))

	select {
	case p := <-evCh:
		assert.Equal(t, path, p)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for create event")
	}
}
