package selection

import (
	"testing"

	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/pool"
)

func setupPool() *pool.IdSpace {
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
	return p
}

func TestSelectExactName(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1")})
	p.CreateWhatProvides()

	q := Select(p, "A", Name|Provides|Glob|Rel, job.Install)
	if len(q) != 1 || q[0].What != job.WhatName || q[0].Id != nameA {
		t.Fatalf("expected a single WhatName job for A, got %+v", q)
	}
}

func TestSelectGlob(t *testing.T) {
	p := setupPool()
	nameFoo := p.Intern("foo-core")
	nameBar := p.Intern("bar-core")
	p.AddSolvable(pool.Solvable{Name: nameFoo, Evr: p.Intern("1-1")})
	p.AddSolvable(pool.Solvable{Name: nameBar, Evr: p.Intern("1-1")})
	p.CreateWhatProvides()

	q := Select(p, "foo-*", Name|Glob, job.Install)
	if len(q) != 1 || q[0].Id != nameFoo {
		t.Fatalf("expected glob foo-* to match only foo-core, got %+v", q)
	}
}

func TestSelectRelation(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("2-1")})
	p.CreateWhatProvides()

	q := Select(p, "A>=1", Name|Rel, job.Install)
	if len(q) != 1 || q[0].What != job.WhatProvides {
		t.Fatalf("expected a WhatProvides job for relation pattern, got %+v", q)
	}
	matches := p.WhatProvides(q[0].Id)
	if len(matches) != 1 {
		t.Fatalf("expected A>=1 to match A-2-1, got %v", matches)
	}
}

func TestSelectCanonical(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1")})
	p.CreateWhatProvides()

	q := Select(p, "A-1-1", Name|Canon, job.Install)
	if len(q) != 1 || q[0].What != job.WhatProvides {
		t.Fatalf("expected canonical A-1-1 to resolve to a WhatProvides job, got %+v", q)
	}
	matches := p.WhatProvides(q[0].Id)
	found := false
	for _, m := range matches {
		if m == sa {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected canonical match to resolve to sa, got %v", matches)
	}
}

func TestSelectNoMatch(t *testing.T) {
	p := setupPool()
	p.Intern("A")
	p.CreateWhatProvides()

	q := Select(p, "does-not-exist", Name|Provides|Glob|Rel|Canon, job.Install)
	if len(q) != 0 {
		t.Fatalf("expected no match, got %+v", q)
	}
}
