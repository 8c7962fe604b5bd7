package cleandeps

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

// TestComputeDropsOrphan grounds spec.md §4.5: erasing A with CleanDeps
// set must also mark A's sole dependency B, which nothing else needs,
// as cleandeps collateral.
func TestComputeDropsOrphan(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")

	repo := p.AddRepo("@installed", 0)
	p.SetInstalled(repo)
	sb := p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1"), Repo: repo})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Repo: repo, Requires: []pool.Id{nameB}})
	p.CreateWhatProvides()

	jobs := job.Queue{{How: job.Erase, What: job.WhatSolvable, Solvable: sa, CleanDeps: true}}
	result := Compute(p, jobs)

	if !result[sb] {
		t.Fatalf("expected B to be cleandeps collateral of erasing A, got %+v", result)
	}
}

// TestComputeKeepsSharedDep grounds the negative case: B is also
// required by a package that stays user-installed, so it must not be
// swept even though A is being erased with CleanDeps.
func TestComputeKeepsSharedDep(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")
	nameC := p.Intern("C")

	repo := p.AddRepo("@installed", 0)
	p.SetInstalled(repo)
	sb := p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1"), Repo: repo})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Repo: repo, Requires: []pool.Id{nameB}})
	sc := p.AddSolvable(pool.Solvable{Name: nameC, Evr: p.Intern("1-1"), Repo: repo, Requires: []pool.Id{nameB}})
	p.CreateWhatProvides()

	jobs := job.Queue{
		{How: job.Install, What: job.WhatSolvable, Solvable: sc},
		{How: job.Erase, What: job.WhatSolvable, Solvable: sa, CleanDeps: true},
	}
	result := Compute(p, jobs)

	if result[sb] {
		t.Fatalf("B is still required by C, must not be swept: %+v", result)
	}
}

func TestGetUnneededUnfiltered(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")

	repo := p.AddRepo("@installed", 0)
	p.SetInstalled(repo)
	sb := p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1"), Repo: repo})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Repo: repo})
	p.CreateWhatProvides()

	userInstalled := map[pool.SolvableId]bool{sa: true}
	unneeded := GetUnneeded(p, userInstalled, false)
	if len(unneeded) != 1 || unneeded[0] != sb {
		t.Fatalf("expected only B unneeded, got %v", unneeded)
	}
}
