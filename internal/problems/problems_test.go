package problems

import (
	"testing"

	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
)

func TestPrepareNumbersFromOne(t *testing.T) {
	cores := [][]rules.Idx{{1, 2}, {3}}
	probs := Prepare(cores)
	if len(probs) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(probs))
	}
	if probs[0].Id != 1 || probs[1].Id != 2 {
		t.Fatalf("problem ids not numbered from 1: %+v", probs)
	}
	if len(probs[0].Rules) != 2 || probs[0].Rules[0] != 1 {
		t.Fatalf("problem rules not copied: %+v", probs[0])
	}
}

func TestFindProblemRulePrefersRequires(t *testing.T) {
	s := rules.New()
	nameA := pool.Id(1)
	litA := pool.LitOf(1)

	jobIdx := s.AddJob(0, litA)
	s.EndClass(rules.JobClass)

	reqIdx := s.AddClause(rules.RPM, rules.PackageRequires, litA.Negate(), litA)
	s.Rule(reqIdx).Solvable = pool.SolvableId(nameA)
	s.EndClass(rules.RPM)

	best := FindProblemRule(s, []rules.Idx{jobIdx, reqIdx})
	if best != reqIdx {
		t.Fatalf("expected the requires rule to outrank the job rule, got %d want %d", best, reqIdx)
	}
}

func TestFindAllProblemRulesDedupes(t *testing.T) {
	all := FindAllProblemRules([]rules.Idx{5, 3, 5, 3, 1})
	if len(all) != 3 {
		t.Fatalf("expected 3 deduped rules, got %v", all)
	}
}

func TestDescribeRequiresFailure(t *testing.T) {
	s := rules.New()
	litA := pool.LitOf(7)

	reqIdx := s.AddClause(rules.RPM, rules.PackageRequires, litA.Negate(), litA)
	s.Rule(reqIdx).Solvable = pool.SolvableId(7)
	s.EndClass(rules.RPM)

	desc := Describe(s, Problem{Id: 1, Rules: []rules.Idx{reqIdx}})
	if desc == "" || desc == "no exemplar rule" {
		t.Fatalf("expected a rendered requires failure, got %q", desc)
	}
}

func TestConvertSolutionJobClass(t *testing.T) {
	s := rules.New()
	idx := s.AddJob(2, pool.LitOf(1))
	s.EndClass(rules.JobClass)

	a := ConvertSolution(s, idx)
	if a.Kind != DropJob || a.JobIndex != 2 {
		t.Fatalf("expected DropJob for job index 2, got %+v", a)
	}
	if a.Kind.String() != "drop job" {
		t.Fatalf("unexpected ActionKind.String(): %q", a.Kind.String())
	}
}
