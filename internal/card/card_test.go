package card

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	tpl := `<h1>@title</h1><p>@title</p>`

	got := Materialize(tpl, "Hello World")
	assert.Equal(t, `<h1>Hello World</h1><p>@title</p>`, got)
	assert.Equal(t, 1, strings.Count(got, "Hello World"))

	assert.Equal(t, "<h1>static</h1>", Materialize("<h1>static</h1>", "Hello World"))
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "og-image.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>@title</h1>"), 0644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>@title</h1>", tpl)

	// Not cached: a rewrite is visible on the next load.
	require.NoError(t, os.WriteFile(path, []byte("<h2>@title</h2>"), 0644))
	tpl, err = LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "<h2>@title</h2>", tpl)

	_, err = LoadTemplate(filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	t.Run("exact size untouched", func(t *testing.T) {
		shot := encodePNG(t, 1200, 669)
		got, err := Normalize(shot, 1200, 669)
		require.NoError(t, err)
		assert.Equal(t, shot, got)
	})

	t.Run("scaled capture", func(t *testing.T) {
		shot := encodePNG(t, 2400, 1338)
		got, err := Normalize(shot, 1200, 669)
		require.NoError(t, err)

		cfg, err := png.DecodeConfig(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, 1200, cfg.Width)
		assert.Equal(t, 669, cfg.Height)
	})

	t.Run("not a png", func(t *testing.T) {
		_, err := Normalize([]byte("nope"), 1200, 669)
		assert.Error(t, err)
	})
}
