package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/crimson-sun/hyprink/internal/model"
)

func testLine(level model.Level, scope, msg string) model.Line {
	e := model.Entry{
		Level:   level,
		Source:  scope,
		Message: msg,
		App:     "ci",
		Time:    time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
	}
	return model.Line{
		Entry:    e,
		Terminal: "\x1b[1m[" + level.String() + "]\x1b[0m " + scope + ": " + msg,
		File:     "2026-02-28 12:00:00 [" + strings.ToUpper(level.String()) + "] " + scope + ": " + msg,
	}
}

func flatLayout(dir string) Layout {
	return Layout{BaseDir: dir, FilenameStructure: "out.log"}
}

func TestWriteAppendsFileForm(t *testing.T) {
	dir := t.TempDir()
	out := New(flatLayout(dir))

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testLine(model.LevelInfo, "api", "ready")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "out.log"))
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if strings.Contains(line, "\x1b[") {
			t.Errorf("line %d: file output carries ANSI codes: %q", i, line)
		}
		if line != "2026-02-28 12:00:00 [INFO] api: ready" {
			t.Errorf("line %d = %q", i, line)
		}
	}
}

func TestPathPlaceholders(t *testing.T) {
	out := New(Layout{
		BaseDir:           "/logs",
		PathStructure:     "{app}/{year}/{month}/{scope}",
		FilenameStructure: "{level}-{day}.log",
	})

	got := out.Path(testLine(model.LevelWarn, "db", "x").Entry)
	want := filepath.Join("/logs", "ci", "2026", "02", "db", "warn-28.log")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}

func TestPathSanitizesSegments(t *testing.T) {
	out := New(Layout{BaseDir: "/logs", PathStructure: "{scope}", FilenameStructure: "{app}.log"})

	e := model.Entry{Source: "../../etc", App: "", Time: time.Now()}
	got := out.Path(e)
	if !strings.HasPrefix(got, "/logs/") {
		t.Fatalf("path escaped base dir: %q", got)
	}
	if filepath.Base(got) != "_.log" {
		t.Fatalf("empty app should become _, got %q", filepath.Base(got))
	}
}

func TestSeparateFilesPerScope(t *testing.T) {
	fs := afero.NewMemMapFs()
	out := New(Layout{BaseDir: "/logs", PathStructure: "{scope}", FilenameStructure: "log.txt"}, WithFs(fs))

	out.Write(context.Background(), testLine(model.LevelInfo, "api", "one"))
	out.Write(context.Background(), testLine(model.LevelInfo, "db", "two"))
	if err := out.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	for _, p := range []string{"/logs/api/log.txt", "/logs/db/log.txt"} {
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("%s: want exactly one line, got %q", p, data)
		}
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	// Each line is 40 bytes, so rotation after ~1 line.
	out := New(flatLayout(dir), WithMaxSize(60))

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testLine(model.LevelError, "db", "timeout")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	// Rotated file should exist.
	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}

	// Current file should also exist and have data.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current file stat error: %v", err)
	}
	if info.Size() == 0 {
		t.Error("current file is empty after rotation")
	}
}

func TestCloseFlushesData(t *testing.T) {
	dir := t.TempDir()
	out := New(flatLayout(dir))

	out.Write(context.Background(), testLine(model.LevelSuccess, "build", "done"))
	out.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "out.log"))
	if len(data) == 0 {
		t.Error("file is empty, Close did not flush buffered data")
	}
}

func TestEvictionKeepsData(t *testing.T) {
	fs := afero.NewMemMapFs()
	out := New(Layout{BaseDir: "/logs", FilenameStructure: "{scope}.log"}, WithFs(fs))

	for i := 0; i < maxOpen+4; i++ {
		scope := "s" + string(rune('a'+i))
		if err := out.Write(context.Background(), testLine(model.LevelInfo, scope, "hello")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if len(out.open) > maxOpen {
		t.Fatalf("%d files open, limit is %d", len(out.open), maxOpen)
	}
	out.Close()

	data, err := afero.ReadFile(fs, "/logs/sa.log")
	if err != nil || len(data) == 0 {
		t.Fatalf("evicted file lost its data: %v", err)
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	dir := t.TempDir()
	out := New(flatLayout(dir))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testLine(model.LevelInfo, "api", "ok"))
		}()
	}
	wg.Wait()
	out.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "out.log"))
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/logs"); got != "/home/tester/logs" {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome changed an absolute path: %q", got)
	}
}
