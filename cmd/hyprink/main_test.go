package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/hyprink/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HYPRINK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLogCommand(t *testing.T) {
	out, err := run(t, "log", "warn", "disk", "almost", "full")
	require.NoError(t, err)
	assert.Equal(t, "[WARN] disk: almost full\n", out)

	_, err = run(t, "log", "loud", "x", "y")
	assert.Error(t, err)
}

func TestPresetCommand(t *testing.T) {
	out, err := run(t, "preset", "test_pass")
	require.NoError(t, err)
	assert.Equal(t, "[SUCCESS] test: test passed\n", out)

	out, err = run(t, "preset", "test_fail", "3", "failures")
	require.NoError(t, err)
	assert.Equal(t, "[ERROR] test: 3 failures\n", out)

	_, err = run(t, "preset", "nope")
	assert.Equal(t, errors.KindUnknownPreset, errors.KindOf(err))
}

func TestPresetCommandWithDictionary(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "dict.toml")
	require.NoError(t, os.WriteFile(dict, []byte("[presets.hello]\nlevel = \"info\"\nsource = \"greet\"\nmsg = \"hi\"\n"), 0o600))

	out, err := run(t, "preset", "-d", dict, "hello")
	require.NoError(t, err)
	assert.Equal(t, "[INFO] greet: hi\n", out)
}

func TestPresetsCommand(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "NAME"))
	assert.Contains(t, out, "pack_ok")
	assert.Contains(t, out, "package written")
}

func TestPackVerifyUnpackCommands(t *testing.T) {
	src := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "main.css"), []byte("body{}"), 0o644))
	pkg := filepath.Join(t.TempDir(), "site.pkg")

	out, err := run(t, "pack", src, "-o", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "[SUCCESS] pack: packed 2 files (12 bytes)")

	out, err = run(t, "verify", "-l", pkg)
	require.NoError(t, err)
	assert.Contains(t, out, "css/main.css")
	assert.Contains(t, out, "site: 2 files, 12 bytes")

	target := filepath.Join(t.TempDir(), "restore")
	_, err = run(t, "unpack", pkg, target)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(target, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestPackDefaultOutputFromDot(t *testing.T) {
	src := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html>"), 0o644))
	t.Chdir(src)

	out, err := run(t, "pack", ".")
	require.NoError(t, err)
	assert.Contains(t, out, "to site.pkg")
	_, err = os.Stat(filepath.Join(src, "site.pkg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(src, "..pkg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultOutput(t *testing.T) {
	got, err := defaultOutput("/work/site/")
	require.NoError(t, err)
	assert.Equal(t, "site.pkg", got)

	got, err = defaultOutput(string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, "root.pkg", got)
}

func TestPackMissingSourceCommand(t *testing.T) {
	out, err := run(t, "pack", filepath.Join(t.TempDir(), "absent"), "-o", filepath.Join(t.TempDir(), "x.pkg"))
	assert.Equal(t, errors.KindSourceNotFound, errors.KindOf(err))
	assert.Contains(t, out, "[ERROR] pack:")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "hyprink.toml")

	out, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "init", path)
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))

	_, err = run(t, "init", "--force", path)
	require.NoError(t, err)

	out, err = run(t, "--config", path, "log", "info", "cfg", "loaded")
	require.NoError(t, err)
	assert.Equal(t, "[INFO] cfg: loaded\n", out)
}
