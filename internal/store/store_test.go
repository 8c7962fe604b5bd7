package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solvectl/solvectl/internal/pool"
)

func writeManifest(t *testing.T, dir string, toml string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(toml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadWalksManifests(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "a"), `
name = "A"
evr = "1-1"
arch = "x86_64"
requires = ["B"]
`)
	writeManifest(t, filepath.Join(root, "b"), `
name = "B"
evr = "1-1"
arch = "x86_64"
`)

	p := pool.New()
	p.SetEvrComparator(func(a, b string) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	repo := p.AddRepo("main", 0)

	if err := Load(p, repo, root); err != nil {
		t.Fatalf("Load: %v", err)
	}
	p.CreateWhatProvides()

	// The two loaded manifests plus the pool's system solvable.
	if p.NumSolvables() != 3 {
		t.Fatalf("expected 3 solvables (A, B and the system solvable), got %d", p.NumSolvables())
	}

	nameA, ok := p.Lookup("A")
	if !ok {
		t.Fatalf("expected A to be interned")
	}
	matches := p.WhatProvidesName(nameA)
	if len(matches) != 1 {
		t.Fatalf("expected exactly one A solvable, got %v", matches)
	}
	sv := p.Solvable(matches[0])
	if len(sv.Requires) != 1 {
		t.Fatalf("expected A to require one dep, got %+v", sv.Requires)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "bad"), `
evr = "1-1"
`)

	p := pool.New()
	repo := p.AddRepo("main", 0)
	if err := Load(p, repo, root); err == nil {
		t.Fatalf("expected an error for a manifest missing name")
	}
}

func TestIDCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.cache")
	c := OpenIDCache(path)

	want := []struct {
		id   pool.Id
		name string
	}{
		{1, "A"},
		{2, "B"},
		{300, "some-longer-package-name"},
	}
	for _, w := range want {
		if err := c.Append(w.id, w.name); err != nil {
			t.Fatalf("Append(%d, %q): %v", w.id, w.name, err)
		}
	}

	var got []struct {
		id   pool.Id
		name string
	}
	err := c.Load(func(id pool.Id, s string) {
		got = append(got, struct {
			id   pool.Id
			name string
		}{id, s})
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].id != want[i].id || got[i].name != want[i].name {
			t.Fatalf("record %d: got (%d,%q), want (%d,%q)", i, got[i].id, got[i].name, want[i].id, want[i].name)
		}
	}
}

func TestIDCacheLoadMissingFileIsNoop(t *testing.T) {
	c := OpenIDCache(filepath.Join(t.TempDir(), "absent.cache"))
	var n int
	if err := c.Load(func(pool.Id, string) { n++ }); err != nil {
		t.Fatalf("Load on missing file should be a no-op, got: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no records from a missing file, got %d", n)
	}
}
