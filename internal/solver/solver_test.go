package solver

import (
	"testing"

	"github.com/solvectl/solvectl/internal/flags"
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

// TestSolveInstallsTransitiveRequires grounds spec.md §8 scenario 1 end
// to end through the top-level Solver, not just the rule/sat layers.
func TestSolveInstallsTransitiveRequires(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")
	p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1")})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Requires: []pool.Id{nameB}})
	p.CreateWhatProvides()

	sv := New(p, flags.Default())
	jobs := job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}}

	result, err := sv.Solve(jobs)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected a solvable job, got problems: %+v", result.Problems)
	}
	if len(result.Transaction.Ops) != 2 {
		t.Fatalf("expected 2 install ops (A and B), got %+v", result.Transaction.Ops)
	}
	foundA := false
	for _, op := range result.Transaction.Ops {
		if op.Solvable == sa && !op.Erase {
			foundA = true
		}
	}
	if !foundA {
		t.Fatalf("expected A to be installed, got %+v", result.Transaction.Ops)
	}
}

// TestSolveReportsUnsatisfiedRequires grounds spec.md §8 scenario 3: A
// requires B>=2 but only B-1-1 is available, so the job must fail with a
// reported problem rather than silently dropping the requirement.
func TestSolveReportsUnsatisfiedRequires(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")

	p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1")})
	relId := p.InternRelation(pool.Relation{Op: pool.RelGE, Left: nameB, Right: p.Intern("2-1")})
	p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Requires: []pool.Id{relId}})
	p.CreateWhatProvides()

	sv := New(p, flags.Default())
	jobs := job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}}

	result, err := sv.Solve(jobs)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.OK {
		t.Fatalf("expected an unsolvable job (no B>=2 available)")
	}
	probs := sv.Problems()
	if len(probs) == 0 {
		t.Fatalf("expected at least one problem recorded")
	}
	sols := sv.Solutions(probs[0])
	if len(sols) == 0 {
		t.Fatalf("expected at least one refined solution (e.g. drop the job)")
	}
}
