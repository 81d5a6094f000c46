package shaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paperboard/example/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	vertexPath, fragmentPath := Paths(dir, "w015")
	assert.Equal(t, filepath.Join(dir, "w015.vert"), vertexPath)

	vs, fs, err := Load(dir, "w015")
	require.NoError(t, err)
	assert.Empty(t, vs, "absent files keep the built-in source")
	assert.Empty(t, fs)

	write(t, fragmentPath, "void main(void) {}")
	vs, fs, err = Load(dir, "w015")
	require.NoError(t, err)
	assert.Empty(t, vs)
	assert.Equal(t, "void main(void) {}", fs)
}

func TestLoadReportsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	vertexPath, _ := Paths(dir, "w015")
	require.NoError(t, os.Mkdir(vertexPath, 0o755)) // a directory cannot be read as a file

	_, _, err := Load(dir, "w015")
	assert.Error(t, err)
}

func TestWatchSchedulesReload(t *testing.T) {
	dir := t.TempDir()
	vertexPath, fragmentPath := Paths(dir, "w017")
	write(t, vertexPath, "v1")

	queue := gfx.NewQueue(nil)
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, Options{Dir: dir, Name: "w017", Debounce: 10 * time.Millisecond}, queue, nil,
		func(vs, fs string) { got = append(got, vs+"|"+fs) })
	require.NoError(t, err)
	defer w.Close()

	write(t, filepath.Join(dir, "unrelated.txt"), "x")
	write(t, fragmentPath, "f2")
	write(t, vertexPath, "v2")

	// reloads only run when the queue is driven
	assert.Eventually(t, func() bool {
		queue.RunDue(time.Now())
		return len(got) > 0 && got[len(got)-1] == "v2|f2"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "nope"), Name: "w015"}, gfx.NewQueue(nil), nil, func(string, string) {})
	assert.Error(t, err)
}

func TestWatchStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, Options{Dir: t.TempDir(), Name: "w015"}, gfx.NewQueue(nil), nil, func(string, string) {})
	require.NoError(t, err)

	cancel()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.NoError(t, w.Close())
}
