package cmd

import (
	"bytes"
	"fmt"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgdataset/pkg/ui"
)

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(32, 24, color.Black), imaging.JPEG))
	photo := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/photo.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/s/photos/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body>
<img src="/photo.jpg?ixid=one">
<img src="/photo.jpg?ixid=two">
<img src="/logo.png">
</body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// run executes the command tree with an isolated environment
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	prev := ui.Output
	ui.Output = &out
	ui.SetColor(false)
	t.Cleanup(func() { ui.Output = prev })

	root := NewRootCmd()
	root.SetArgs(append([]string{"--log-level", "disabled"}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestCollectDownloadAnnotate(t *testing.T) {
	server := newFixtureServer(t)
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("IMGDATASET_SEARCH_URL", server.URL+"/s/photos/{query}")

	_, err := run(t, "--data-dir", dataDir, "collect", "cat")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "cat.json"))

	_, err = run(t, "--data-dir", dataDir, "download", "label", "cat", "--workers", "2", "--resize", "8x8")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "one.jpg"))
	assert.FileExists(t, filepath.Join(dataDir, "two.jpg"))

	dests, err := os.ReadFile(filepath.Join(dataDir, "cat.txt"))
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(dataDir, "one.jpg")+"\n"+filepath.Join(dataDir, "two.jpg")+"\n",
		string(dests))

	csvPath := filepath.Join(t.TempDir(), "train.csv")
	out, err := run(t, "--data-dir", dataDir, "annotate", "cat", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cat")

	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "one.jpg, 0,\ntwo.jpg, 0,\n", string(content))

	out, err = run(t, "--data-dir", dataDir, "status", "cat")
	require.NoError(t, err)
	assert.Contains(t, out, "2 entries, 2 stored, 2 destination log lines")
}

func TestSaveAndGrid(t *testing.T) {
	server := newFixtureServer(t)
	dataDir := t.TempDir()

	_, err := run(t, "--data-dir", dataDir, "save", server.URL+"/photo.jpg", "--name", "x")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "x.jpg"))

	gridPath := filepath.Join(t.TempDir(), "grid.jpg")
	_, err = run(t, "--data-dir", dataDir, "grid", "--names", "x,missing", "--out", gridPath, "--cell-size", "10")
	require.NoError(t, err)

	grid, err := imaging.Open(gridPath)
	require.NoError(t, err)
	assert.Equal(t, 50, grid.Bounds().Dx())
	assert.Equal(t, 10, grid.Bounds().Dy())
}

func TestSaveWithoutIxidFails(t *testing.T) {
	server := newFixtureServer(t)

	_, err := run(t, "--data-dir", t.TempDir(), "save", server.URL+"/photo.jpg")
	assert.Error(t, err)
}

func TestAnnotateMissingLabelFails(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	_, err := run(t, "--data-dir", t.TempDir(), "annotate", "nope", "--out", csvPath)
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "imgdataset.yaml")

	_, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, "--config", path, "config", "init")
	assert.Error(t, err)

	out, err := run(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	out, err = run(t, "--config", path, "--data-dir", "/tmp/elsewhere", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: /tmp/elsewhere")

	require.NoError(t, os.WriteFile(path, []byte("download:\n  workers: 50\n"), 0644))
	out, err = run(t, "--config", path, "config", "validate")
	assert.Error(t, err)
	assert.Contains(t, out, "workers should not exceed 10")
}

func TestAnnotateParquetDefaultName(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "cat.json"),
		[]byte(`{"a1": "https://images.example.com/a.jpg?ixid=a1"}`), 0644))

	configPath := filepath.Join(dir, "imgdataset.yaml")
	csvPath := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(configPath, []byte("annotations:\n  file: "+csvPath+"\n"), 0644))

	_, err := run(t, "--config", configPath, "--data-dir", dataDir, "annotate", "cat", "--format", "parquet")
	require.NoError(t, err)

	assert.NoFileExists(t, csvPath)
	assert.FileExists(t, filepath.Join(dir, "train.parquet"))

	explicit := filepath.Join(dir, "explicit.out")
	_, err = run(t, "--config", configPath, "--data-dir", dataDir, "annotate", "cat", "--format", "parquet", "--out", explicit)
	require.NoError(t, err)
	assert.FileExists(t, explicit)
}

func TestAnnotationsPath(t *testing.T) {
	tests := []struct {
		path, format, want string
	}{
		{"unsplash.csv", "csv", "unsplash.csv"},
		{"unsplash.csv", "parquet", "unsplash.parquet"},
		{"out/train.CSV", "Parquet", "out/train.parquet"},
		{"train.parquet", "parquet", "train.parquet"},
		{"train.data", "parquet", "train.data"},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, annotationsPath(tt.path, tt.format))
		})
	}
}
