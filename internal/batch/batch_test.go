package batch

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softviewport/render/imagefile"
)

const triangle = `
width: 16
height: 12
depth: 10
commands:
  - op: fill_triangle
    points: [[-1, -1, 0], [0.9, -1, 0], [-1, 0.9, 0]]
    color: [200, 10, 10, 255]
`

func scenes(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestFind(t *testing.T) {
	dir := scenes(t, map[string]string{
		"b.yaml":     triangle,
		"a.json":     "{}",
		"c.yml":      triangle,
		"notes.txt":  "x",
		ManifestName: "[]",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	paths, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, paths)

	_, err = Find(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := scenes(t, map[string]string{
		"one.yaml": triangle,
		"two.yaml": triangle,
		"bad.yaml": "width: 0\nheight: 1\ndepth: 1\n",
	})
	out := filepath.Join(t.TempDir(), "out")
	paths, err := Find(dir)
	require.NoError(t, err)

	results := Run(Config{
		OutputDir: out,
		Format:    imagefile.PNG,
		Scale:     2,
		Workers:   2,
		Log:       zerolog.Nop(),
	}, paths)
	require.Len(t, results, 3)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.False(t, byName["bad"].Success)
	assert.Contains(t, byName["bad"].Error, "invalid")

	one := byName["one"]
	require.True(t, one.Success, one.Error)
	assert.Equal(t, "one.png", one.Image)
	assert.Equal(t, 16, one.Width)

	f, err := os.Open(filepath.Join(out, "one.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
	r, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	assert.Equal(t, uint32(255), a>>8)
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	err := WriteManifest(path, []Result{
		{Source: "s/a.yaml", Name: "a", Width: 4, Height: 3, Depth: 2, Image: "a.webp", Success: true},
		{Source: "s/b.yaml", Name: "b", Error: "boom"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []ManifestEntry{{Name: "a", Source: "s/a.yaml", Width: 4, Height: 3, Depth: 2, Image: "a.webp"}}, entries)
}
