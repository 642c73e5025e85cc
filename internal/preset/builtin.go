package preset

import "github.com/crimson-sun/hyprink/internal/model"

// Builtins returns the presets every Context starts with. The slice is
// freshly allocated on each call.
func Builtins() []model.Preset {
	return []model.Preset{
		{Name: "trace", Level: model.LevelTrace},
		{Name: "debug", Level: model.LevelDebug},
		{Name: "info", Level: model.LevelInfo},
		{Name: "success", Level: model.LevelSuccess},
		{Name: "warn", Level: model.LevelWarn},
		{Name: "error", Level: model.LevelError},

		{Name: "test_pass", Level: model.LevelSuccess, Source: "test", Message: "test passed"},
		{Name: "test_fail", Level: model.LevelError, Source: "test", Message: "test failed"},

		{Name: "pack_ok", Level: model.LevelSuccess, Source: "pack", Message: "package written"},
		{Name: "pack_fail", Level: model.LevelError, Source: "pack", Message: "packing failed"},
		{Name: "unpack_ok", Level: model.LevelSuccess, Source: "pack", Message: "package extracted"},
	}
}
