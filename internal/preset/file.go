package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/model"
)

// Record is the on-disk form of a preset in a dictionary file.
// Scope is accepted as an older spelling of Source.
type Record struct {
	Level   string `toml:"level" yaml:"level" mapstructure:"level"`
	Source  string `toml:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	Scope   string `toml:"scope,omitempty" yaml:"scope,omitempty" mapstructure:"scope"`
	Message string `toml:"msg,omitempty" yaml:"msg,omitempty" mapstructure:"msg"`
}

// Dictionary is the top-level shape of a preset file:
//
//	[presets.deploy_ok]
//	level = "success"
//	source = "deploy"
//	msg = "deployment finished"
type Dictionary struct {
	Presets map[string]Record `toml:"presets" yaml:"presets"`
}

// FromRecords converts dictionary records to presets ordered by name.
// An unknown level is an InvalidArgument error naming the preset.
func FromRecords(records map[string]Record) ([]model.Preset, error) {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.Preset, 0, len(records))
	for _, name := range names {
		rec := records[name]
		lvl, ok := model.ParseLevel(rec.Level)
		if !ok {
			return nil, errors.E(errors.KindInvalidArgument, "preset", name,
				fmt.Errorf("unknown level %q", rec.Level))
		}
		src := rec.Source
		if src == "" {
			src = rec.Scope
		}
		out = append(out, model.Preset{Name: name, Level: lvl, Source: src, Message: rec.Message})
	}
	return out, nil
}

// LoadFile reads a preset dictionary. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFile(path string) ([]model.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(errors.KindIO, "preset", path, err)
	}

	var dict Dictionary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &dict)
	default:
		_, err = toml.Decode(string(data), &dict)
	}
	if err != nil {
		return nil, errors.E(errors.KindInvalidArgument, "preset", path, err)
	}
	return FromRecords(dict.Presets)
}
