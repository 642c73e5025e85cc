// Package preset implements the named (level, source, message) table a
// Context resolves abbreviated log calls against.
package preset

import (
	"sort"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/model"
)

// Registry maps preset names to their stored values. It is not safe for
// concurrent use; the owning Context serializes access.
type Registry struct {
	presets map[string]model.Preset
}

// NewRegistry returns a registry seeded with the given presets, later
// entries replacing earlier ones with the same name.
func NewRegistry(seed []model.Preset) *Registry {
	r := &Registry{presets: make(map[string]model.Preset, len(seed))}
	for _, p := range seed {
		if p.Name == "" {
			continue
		}
		r.presets[p.Name] = p
	}
	return r
}

// Define upserts a preset. Redefinition replaces the stored value.
func (r *Registry) Define(p model.Preset) error {
	if p.Name == "" {
		return errors.E(errors.KindInvalidArgument, "preset", "", errors.ErrEmptyName)
	}
	r.presets[p.Name] = p
	return nil
}

// Get returns a copy of the named preset.
func (r *Registry) Get(name string) (model.Preset, bool) {
	p, ok := r.presets[name]
	return p, ok
}

// Resolve looks up name and produces the entry a log call would emit.
// The message is override when non-empty, else the stored default, else "".
// Level and source always come from the preset.
func (r *Registry) Resolve(name, override string) (model.Entry, error) {
	p, ok := r.presets[name]
	if !ok {
		return model.Entry{}, errors.E(errors.KindUnknownPreset, "preset", name, nil)
	}
	msg := p.Message
	if override != "" {
		msg = override
	}
	return model.Entry{Level: p.Level, Source: p.Source, Message: msg}, nil
}

// Len returns the number of presets.
func (r *Registry) Len() int { return len(r.presets) }

// Names returns preset names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns copies of every preset ordered by name.
func (r *Registry) Snapshot() []model.Preset {
	out := make([]model.Preset, 0, len(r.presets))
	for _, name := range r.Names() {
		out = append(out, r.presets[name])
	}
	return out
}
