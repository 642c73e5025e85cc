package model

import "time"

// Entry is a single log record on its way to a sink. It is never retained
// after emission.
type Entry struct {
	Level   Level
	Source  string // free-form scope tag
	Message string
	App     string // application name, used by file path templates
	Time    time.Time
}

// Line is an Entry after formatting. Terminal may carry ANSI styling;
// File is always plain text.
type Line struct {
	Entry    Entry
	Terminal string
	File     string
}
