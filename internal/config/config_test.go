package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/model"
)

// isolate points every lookup location at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvPath, "")
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Layout.Structure, cfg.Layout.Structure)
	assert.Equal(t, d.Layout.Tag, cfg.Layout.Tag)
	assert.Equal(t, "hyprink", cfg.Logging.AppName)
	assert.False(t, cfg.Logging.WriteByDefault)
	assert.Equal(t, "#f38ba8", cfg.Theme.Colors["error"])
	assert.Equal(t, 0, cfg.Pack.Workers)
	assert.Empty(t, cfg.Presets)
}

func TestLoad_DefaultPathFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "hyprink", "hyprink.toml"), `
[logging]
app_name = "deployer"
write_by_default = true

[layout.tag]
transform = "lowercase"
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "deployer", cfg.Logging.AppName)
	assert.True(t, cfg.Logging.WriteByDefault)
	assert.Equal(t, "lowercase", cfg.Layout.Tag.Transform)
	// Untouched keys keep their defaults.
	assert.Equal(t, "[", cfg.Layout.Tag.Prefix)
	assert.Equal(t, Default().Logging.FilenameStructure, cfg.Logging.FilenameStructure)
}

func TestLoad_ExplicitPathWithPresets(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, `
[theme.colors]
info = "#112233"

[presets.deploy_ok]
level = "success"
source = "deploy"
msg = "deployment finished"

[presets.legacy]
level = "warn"
scope = "old"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#112233", cfg.Theme.Colors["info"])
	assert.Equal(t, "#f38ba8", cfg.Theme.Colors["error"], "file colors merge over defaults")

	presets, err := cfg.PresetList()
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, model.Preset{Name: "deploy_ok", Level: model.LevelSuccess, Source: "deploy", Message: "deployment finished"}, presets[0])
	assert.Equal(t, "old", presets[1].Source)
}

func TestLoad_PartialTablesKeepDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "partial.toml")
	writeFile(t, path, `
[theme.colors]
info = "#112233"

[icons.nerdfont]
warn = "W"

[icons.ascii]
error = "E"

[layout.labels]
warn = "careful"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	d := Default()

	for k, want := range d.Theme.Colors {
		if k != "info" {
			assert.Equal(t, want, cfg.Theme.Colors[k], "color %s", k)
		}
	}
	assert.Equal(t, "#112233", cfg.Theme.Colors["info"])
	assert.Equal(t, "W", cfg.Icons.Nerdfont["warn"])
	assert.Equal(t, d.Icons.Nerdfont["error"], cfg.Icons.Nerdfont["error"])
	assert.Len(t, cfg.Icons.Nerdfont, len(d.Icons.Nerdfont))
	assert.Equal(t, "E", cfg.Icons.ASCII["error"])
	assert.Equal(t, d.Icons.ASCII["info"], cfg.Icons.ASCII["info"])
	assert.Equal(t, map[string]string{"warn": "careful"}, cfg.Layout.Labels)
}

func TestLoad_EnvPathAndOverrides(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env.toml")
	writeFile(t, path, "[pack]\nworkers = 2\n")
	t.Setenv(EnvPath, path)
	t.Setenv("HYPRINK_LOGGING_APP_NAME", "from-env")
	t.Setenv("HYPRINK_PACK_WORKERS", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Logging.AppName)
	assert.Equal(t, 4, cfg.Pack.Workers)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Equal(t, errors.KindIO, errors.KindOf(err))
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[logging\napp_name = ")

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "invalid.toml")
	writeFile(t, path, `
[layout.tag]
alignment = "diagonal"
min_width = -1

[theme.colors]
info = "blue"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidArgument, errors.KindOf(err))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "layout.tag.alignment")
	assert.Contains(t, fields, "layout.tag.min_width")
	assert.Contains(t, strings.Join(fields, " "), "theme.colors")
}

func TestValidate_DefaultIsValid(t *testing.T) {
	assert.Empty(t, Default().Validate())
}

func TestValidationErrorsMessage(t *testing.T) {
	one := ValidationErrors{{Field: "pack.workers", Value: 999, Message: "must be at most 256"}}
	assert.Equal(t, "pack.workers: must be at most 256 (got: 999)", one.Error())

	two := append(one, ValidationError{Field: "layout.tag.transform", Value: "x", Message: "bad"})
	assert.True(t, strings.HasPrefix(two.Error(), "2 validation errors:"))
}

func TestActiveIcons(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "\uf05a", cfg.ActiveIcons()["info"])
	cfg.Theme.ActiveIcons = "ascii"
	assert.Equal(t, "i", cfg.ActiveIcons()["info"])
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "hyprink.toml")

	require.NoError(t, WriteDefault(path, false))

	err := WriteDefault(path, false)
	require.Error(t, err, "existing file must not be overwritten")
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Logging, cfg.Logging)
	assert.Equal(t, Default().Layout.Structure, cfg.Layout.Structure)
}
