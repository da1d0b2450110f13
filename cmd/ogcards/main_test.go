package main

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/ogcards/internal/card"
)

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("OGCARDS_OUT_DIR", "public")
	t.Setenv("OGCARDS_ROUTES", "public/routes.json")
	t.Setenv("OGCARDS_WIDTH", "800")
	t.Setenv("OGCARDS_HEIGHT", "418")
	t.Setenv("OGCARDS_DEFAULT_TITLE", "My Blog")
	t.Setenv("OGCARDS_NO_PROGRESS", "true")
	t.Setenv("OGCARDS_PAGE_TIMEOUT", "30s")

	parser, err := kong.New(&CLI, kong.Vars{"default_template": card.DefaultTemplatePath})
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"generate"})
	require.NoError(t, err)
	assert.Equal(t, "generate", kctx.Command())

	f := CLI.Generate.Flags
	assert.Equal(t, "public", f.OutDir)
	assert.Equal(t, "public/routes.json", f.Routes)
	assert.Equal(t, 800, f.Width)
	assert.Equal(t, 418, f.Height)
	assert.Equal(t, "My Blog", f.DefaultTitle)
	assert.True(t, f.NoProgress)
	assert.Equal(t, 30*time.Second, f.PageTimeout)
}
