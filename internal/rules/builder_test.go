package rules

import (
	"testing"

	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
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

// TestTrivialInstall grounds spec.md §8 scenario 1: A requires B, both
// installable, job install name A, expect a requires clause ¬A ∨ B with
// no RPM_NOTHING_PROVIDES_DEP assertion.
func TestTrivialInstall(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")
	sb := p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1")})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Requires: []pool.Id{nameB}})
	p.CreateWhatProvides()

	s := New()
	b := NewBuilder(p, s, flags.Default())
	jobs := job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}}
	b.BuildRPM(jobs)
	b.BuildFeatureAndUpdate(policy.New(p, flags.Default()))
	b.BuildJob(jobs)
	b.BuildInfArch()
	b.BuildDup(jobs)
	b.BuildBest(jobs, policy.New(p, flags.Default()))
	b.BuildChoice(policy.New(p, flags.Default()))

	foundRequires := false
	start, end := s.Range(RPM)
	for i := start; i < end; i++ {
		r := s.Rule(i)
		if r.Reason == PackageRequires {
			foundRequires = true
			if len(r.Literals) != 2 {
				t.Fatalf("requires clause has %d literals, want 2: %v", len(r.Literals), r.Literals)
			}
			if r.Literals[0] != pool.LitOf(sa).Negate() {
				t.Fatalf("requires clause missing ¬A: %v", r.Literals)
			}
			if r.Literals[1] != pool.LitOf(sb) {
				t.Fatalf("requires clause missing B: %v", r.Literals)
			}
		}
		if r.Reason == NothingProvidesDep {
			t.Fatalf("unexpected NothingProvidesDep rule for satisfiable requires")
		}
	}
	if !foundRequires {
		t.Fatal("no requires clause emitted")
	}

	jstart, jend := s.Range(JobClass)
	if jend-jstart != 1 {
		t.Fatalf("expected exactly one job rule, got %d", jend-jstart)
	}
	jr := s.Rule(jstart)
	if len(jr.Literals) != 1 || jr.Literals[0] != pool.LitOf(sa) {
		t.Fatalf("job rule = %v, want [+A]", jr.Literals)
	}
}

func TestNothingProvidesDep(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	missing := p.Intern("Missing")
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Requires: []pool.Id{missing}})
	p.CreateWhatProvides()

	s := New()
	b := NewBuilder(p, s, flags.Default())
	b.BuildRPM(job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}})

	found := false
	start, end := s.Range(RPM)
	for i := start; i < end; i++ {
		r := s.Rule(i)
		if r.Reason == NothingProvidesDep && len(r.Literals) == 1 && r.Literals[0] == pool.LitOf(sa).Negate() {
			found = true
		}
	}
	if !found {
		t.Fatal("expected RPM_NOTHING_PROVIDES_DEP assertion for unsatisfiable requires")
	}
}
