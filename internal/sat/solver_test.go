package sat

import (
	"testing"

	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
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

func buildStore(p *pool.IdSpace, jobs job.Queue) (*rules.Store, *rules.Builder, *policy.Policy) {
	s := rules.New()
	b := rules.NewBuilder(p, s, flags.Default())
	pol := policy.New(p, flags.Default())
	b.BuildRPM(jobs)
	b.BuildFeatureAndUpdate(pol)
	b.BuildJob(jobs)
	b.BuildInfArch()
	b.BuildDup(jobs)
	b.BuildBest(jobs, pol)
	b.BuildChoice(pol)
	return s, b, pol
}

// TestRunTrivialInstall grounds spec.md §8 scenario 1: A requires B,
// both installable, job install name A; Run must decide both true.
func TestRunTrivialInstall(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameB := p.Intern("B")
	sb := p.AddSolvable(pool.Solvable{Name: nameB, Evr: p.Intern("1-1")})
	sa := p.AddSolvable(pool.Solvable{Name: nameA, Evr: p.Intern("1-1"), Requires: []pool.Id{nameB}})
	p.CreateWhatProvides()

	jobs := job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}}
	store, b, pol := buildStore(p, jobs)

	s := New(p, store, pol)
	result := s.Run(flags.Default(), jobs, b.DupMap(), b.DupInvolved())
	if !result.OK {
		t.Fatalf("expected solvable job, got problems: %v", result.Problems)
	}

	installedA, _, okA := s.Decided(sa)
	if !okA || !installedA {
		t.Fatalf("A must be decided installed")
	}
	installedB, _, okB := s.Decided(sb)
	if !okB || !installedB {
		t.Fatalf("B must be decided installed to satisfy A's requires")
	}
}

// TestRunConflictingRequires grounds an install job whose only provider
// conflicts with an already-installed package — must report a problem,
// not crash or silently drop the job.
func TestRunConflictingRequires(t *testing.T) {
	p := setupPool()
	nameA := p.Intern("A")
	nameC := p.Intern("C")

	repo := p.AddRepo("@installed", 0)
	p.SetInstalled(repo)
	sc := p.AddSolvable(pool.Solvable{Name: nameC, Evr: p.Intern("1-1"), Repo: repo})
	_ = sc

	sa := p.AddSolvable(pool.Solvable{
		Name:      nameA,
		Evr:       p.Intern("1-1"),
		Conflicts: []pool.Id{nameC},
	})
	_ = sa
	p.CreateWhatProvides()

	jobs := job.Queue{{How: job.Install, What: job.WhatName, Id: nameA}}
	store, b, pol := buildStore(p, jobs)

	s := New(p, store, pol)
	result := s.Run(flags.Default(), jobs, b.DupMap(), b.DupInvolved())
	if result.OK {
		t.Fatalf("expected a conflict problem installing A against installed C")
	}
	if len(result.Problems) == 0 {
		t.Fatalf("expected at least one recorded problem core")
	}
}
