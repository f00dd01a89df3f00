package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPrepareCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	up := filepath.Join(root, "__DATA__")
	out := filepath.Join(root, "nested", "__OUTPUT__")

	if err := Prepare(quietLogger(), up, out); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	for _, d := range []string{up, out} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", d, err)
		}
	}
	// Running again is harmless.
	if err := Prepare(quietLogger(), up, out); err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
}

func TestPrepareFailsOnFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "taken")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Prepare(quietLogger(), blocker); err == nil {
		t.Fatalf("expected error when path is a file")
	}
}

func TestUniquePath(t *testing.T) {
	a := UniquePath("dir", "upload_", ".pdf")
	b := UniquePath("dir", "upload_", ".pdf")
	if a == b {
		t.Fatalf("paths collide: %s", a)
	}
	if filepath.Dir(a) != "dir" || !strings.HasPrefix(filepath.Base(a), "upload_") || filepath.Ext(a) != ".pdf" {
		t.Fatalf("unexpected path %s", a)
	}
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("%PDF"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := now.Add(-age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
		return p
	}
	old := write("old.pdf", 48*time.Hour)
	fresh := write("fresh.pdf", time.Minute)
	keep := write(".gitkeep", 72*time.Hour)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	n, err := Sweep(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d files, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("stale file still present")
	}
	for _, p := range []string{fresh, keep, filepath.Join(dir, "sub")} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should survive: %v", p, err)
		}
	}
}

func TestSweepMissingDirectory(t *testing.T) {
	n, err := Sweep(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("Sweep = %d, %v", n, err)
	}
}

func TestNewSweeperValidatesInput(t *testing.T) {
	cases := []struct {
		name     string
		schedule string
		maxAge   time.Duration
	}{
		{name: "empty schedule", schedule: "", maxAge: time.Hour},
		{name: "bad schedule", schedule: "not a cron", maxAge: time.Hour},
		{name: "zero retention", schedule: "@hourly", maxAge: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSweeper(tc.schedule, tc.maxAge, quietLogger(), t.TempDir()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSweeperRunOnceAndLifecycle(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	for _, d := range []string{a, b} {
		p := filepath.Join(d, "old.pdf")
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(-2 * time.Hour)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	s, err := NewSweeper("@every 1h", time.Hour, quietLogger(), a, b)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	if n := s.RunOnce(); n != 2 {
		t.Fatalf("RunOnce removed %d, want 2", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatalf("second Start should fail")
	}
	s.Stop()
	s.Stop()
}
