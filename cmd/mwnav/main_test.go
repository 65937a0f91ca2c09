package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwnav/mediawikinav/internal/config"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNormalizeStdin(t *testing.T) {
	out, err := run(t, "a {{Box|x   y|k =  v}} b", "normalize")
	require.NoError(t, err)
	assert.Equal(t, "a {{Box|x y\n|k=v\n}} b", out)
}

func TestNormalizeFlags(t *testing.T) {
	out, err := run(t, "{{Box|x   y}}", "normalize", "-t", "trim", "-d", "kx_example,kx_positional")
	require.NoError(t, err)
	assert.Equal(t, "{{Box|x   y\n|kx_example=123_2\n|kx_positional=1\n}}", out)

	out, err = run(t, "{{Box|x   y}}", "normalize", "--raw-bodies")
	require.NoError(t, err)
	assert.Equal(t, "{{Box|x y\n}}", out)
}

func TestNormalizeFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.wiki")
	require.NoError(t, os.WriteFile(path, []byte("{{Box|a|b}}"), 0o600))

	_, err := run(t, "", "normalize", "-i", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{{Box|a | b\n}}", string(data))

	_, err = run(t, "x", "normalize", "-i")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mwnav.yaml")

	out, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Wiki, cfg.Wiki)
	assert.Equal(t, def.Normalize.Transforms, cfg.Normalize.Transforms)
	assert.Equal(t, def.Server, cfg.Server)

	_, err = run(t, "", "config", "init", path)
	assert.Error(t, err)
	_, err = run(t, "", "config", "init", "--force", path)
	assert.NoError(t, err)

	out, err = run(t, "", "--config", path, "--password", "hunter2", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
}

func TestWikiCommandsNeedBaseURL(t *testing.T) {
	t.Setenv("MWNAV_WIKI_BASE_URL", "")
	_, err := run(t, "", "raw", "Main_Page")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no wiki configured")

	_, err = run(t, "", "fix")
	assert.Error(t, err)
}

func TestHistoryInMemory(t *testing.T) {
	out, err := run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
}
