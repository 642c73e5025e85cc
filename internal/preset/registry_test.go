package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/model"
)

func TestResolveUsesOverrideThenDefault(t *testing.T) {
	r := NewRegistry(Builtins())

	tests := []struct {
		name     string
		preset   string
		override string
		want     model.Entry
	}{
		{"stored default", "test_pass", "", model.Entry{Level: model.LevelSuccess, Source: "test", Message: "test passed"}},
		{"override wins", "test_pass", "42 passed", model.Entry{Level: model.LevelSuccess, Source: "test", Message: "42 passed"}},
		{"no default, no override", "info", "", model.Entry{Level: model.LevelInfo}},
		{"no default, override", "warn", "disk almost full", model.Entry{Level: model.LevelWarn, Message: "disk almost full"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.preset, tt.override)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	r := NewRegistry(Builtins())

	_, err := r.Resolve("no_such_preset", "msg")
	require.Error(t, err)
	assert.Equal(t, errors.KindUnknownPreset, errors.KindOf(err))
	assert.Contains(t, err.Error(), "no_such_preset")
}

func TestDefineIsLastWriteWins(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Define(model.Preset{Name: "deploy", Level: model.LevelInfo, Source: "ci", Message: "first"}))
	require.NoError(t, r.Define(model.Preset{Name: "deploy", Level: model.LevelError, Source: "cd"}))

	got, ok := r.Get("deploy")
	require.True(t, ok)
	assert.Equal(t, model.Preset{Name: "deploy", Level: model.LevelError, Source: "cd"}, got,
		"redefinition replaces the whole value, no merge")
	assert.Equal(t, 1, r.Len())
}

func TestDefineRejectsEmptyName(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Define(model.Preset{Level: model.LevelInfo})
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))
	assert.Equal(t, 0, r.Len())
}

func TestResolveDoesNotMutate(t *testing.T) {
	r := NewRegistry(Builtins())
	before := r.Snapshot()
	_, _ = r.Resolve("test_fail", "override")
	_, _ = r.Resolve("missing", "")
	assert.Equal(t, before, r.Snapshot())
}

func TestBuiltinsAreFreshCopies(t *testing.T) {
	a := Builtins()
	a[0].Message = "mutated"
	b := Builtins()
	assert.NotEqual(t, "mutated", b[0].Message)
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry([]model.Preset{{Name: "b"}, {Name: "a"}, {Name: "c"}, {Name: ""}})
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.toml")
	content := `
[presets.deploy_ok]
level = "success"
source = "deploy"
msg = "deployment finished"

[presets.legacy]
level = "warning"
scope = "old"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Preset{
		{Name: "deploy_ok", Level: model.LevelSuccess, Source: "deploy", Message: "deployment finished"},
		{Name: "legacy", Level: model.LevelWarn, Source: "old"},
	}, got)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := "presets:\n  cache_miss:\n    level: debug\n    source: cache\n    msg: miss\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Preset{Name: "cache_miss", Level: model.LevelDebug, Source: "cache", Message: "miss"}, got[0])
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Equal(t, errors.KindIO, errors.KindOf(err))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[presets.x\nlevel="), 0o644))
	_, err = LoadFile(bad)
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))

	badLevel := filepath.Join(dir, "level.toml")
	require.NoError(t, os.WriteFile(badLevel, []byte("[presets.x]\nlevel = \"shout\"\n"), 0o644))
	_, err = LoadFile(badLevel)
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))
	assert.Contains(t, err.Error(), `"x"`)
}
