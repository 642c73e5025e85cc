package model

// Preset is a named, reusable (level, source, message) triple.
type Preset struct {
	Name    string
	Level   Level
	Source  string
	Message string // default message, may be empty
}
