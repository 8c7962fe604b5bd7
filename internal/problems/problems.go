// Package problems implements spec.md §4.4: turning an unsolvable core
// recorded by the sat engine into a single exemplar rule, the full
// deduplicated proof, and a set of concrete, user-actionable solutions
// ("drop job N", "allow downgrade of A to A′", …).
package problems

import (
	"sort"

	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/rules"
	"github.com/solvectl/solvectl/internal/sat"
)

// Problem is one unsolvable core, numbered from 1 as spec.md's problems
// array does.
type Problem struct {
	Id    int
	Rules []rules.Idx
}

// Prepare converts the solver's recorded cores (spec.md's zero-delimited
// proof groups) into numbered Problems. There is no sentinel to strip
// since the sat package already hands back one slice per core.
func Prepare(cores [][]rules.Idx) []Problem {
	out := make([]Problem, len(cores))
	for i, c := range cores {
		out[i] = Problem{Id: i + 1, Rules: append([]rules.Idx(nil), c...)}
	}
	return out
}

// classRank orders rule classes by findproblemrule's stated preference:
// requires assertions and conflicts first, then job matches, then
// installed-package requires, then everything else, then update/job
// last. Reason further breaks ties within RPM-class rules.
func classRank(store *rules.Store, idx rules.Idx) int {
	r := store.Rule(idx)
	switch r.Class {
	case rules.RPM:
		switch r.Reason {
		case rules.PackageRequires:
			return 0
		case rules.PackageConflicts:
			return 1
		case rules.NotInstallable, rules.NothingProvidesDep:
			return 2
		default:
			return 3
		}
	case rules.JobClass:
		return 4
	case rules.Update, rules.Feature:
		return 7
	case rules.InfArch, rules.Dup:
		return 6
	case rules.Best, rules.Choice:
		return 5
	default:
		return 8
	}
}

// FindProblemRule picks the single exemplar rule from a problem's proof,
// per spec.md §4.4's stated preference order. Same-name infarch/dup
// ranges are normalized to their first representative, since every rule
// in such a run concerns the same offending solvable.
func FindProblemRule(store *rules.Store, problem []rules.Idx) rules.Idx {
	if len(problem) == 0 {
		return rules.NoRule
	}
	best := problem[0]
	bestRank := classRank(store, best)
	for _, idx := range problem[1:] {
		r := classRank(store, idx)
		if r < bestRank {
			best, bestRank = idx, r
		}
	}
	if store.ClassOf(best) == rules.InfArch || store.ClassOf(best) == rules.Dup {
		start, _ := store.Range(store.ClassOf(best))
		sv := store.Rule(best).Solvable
		for i := start; i < best; i++ {
			if store.Rule(i).Solvable == sv {
				return i
			}
		}
	}
	return best
}

// FindAllProblemRules returns every rule in the proof, deduplicated and
// in ascending order.
func FindAllProblemRules(problem []rules.Idx) []rules.Idx {
	seen := make(map[rules.Idx]bool, len(problem))
	var out []rules.Idx
	for _, idx := range problem {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Action is one element of a refined solution: a concrete, reversible
// relaxation of the job that would make the system solvable.
type Action struct {
	Kind          ActionKind
	JobIndex      int
	InstalledId   int
	ReplacementId int
	Rule          rules.Idx
}

// ActionKind classifies a converted solution element, per spec.md §4.4's
// convertsolution mapping.
type ActionKind uint8

const (
	DropJob ActionKind = iota
	AllowReplace
	AllowErase
	AllowInfArch
	AllowDup
	AllowBest
)

func (k ActionKind) String() string {
	switch k {
	case DropJob:
		return "drop job"
	case AllowReplace:
		return "allow replace"
	case AllowErase:
		return "allow erase"
	case AllowInfArch:
		return "allow architecture change"
	case AllowDup:
		return "allow distupgrade replacement"
	case AllowBest:
		return "allow non-best candidate"
	}
	return "unknown"
}

// ConvertSolution maps an internal rule (the `why` a refined solution
// settled on) into a user-actionable Action, per spec.md §4.4.
func ConvertSolution(store *rules.Store, idx rules.Idx) Action {
	r := store.Rule(idx)
	switch r.Class {
	case rules.JobClass:
		return Action{Kind: DropJob, JobIndex: r.JobIndex, Rule: idx}
	case rules.InfArch:
		return Action{Kind: AllowInfArch, InstalledId: int(r.Solvable), Rule: idx}
	case rules.Dup:
		return Action{Kind: AllowDup, InstalledId: int(r.Solvable), Rule: idx}
	case rules.Update, rules.Feature:
		if len(r.Literals) > 1 {
			return Action{Kind: AllowReplace, InstalledId: int(r.Solvable), Rule: idx}
		}
		return Action{Kind: AllowErase, InstalledId: int(r.Solvable), Rule: idx}
	case rules.Best:
		return Action{Kind: AllowBest, InstalledId: int(r.Solvable), Rule: idx}
	default:
		return Action{Kind: AllowErase, InstalledId: int(r.Solvable), Rule: idx}
	}
}

// Solution is a minimal set of Actions that together make the job
// solvable once applied.
type Solution struct {
	Actions []Action
}

// RefineSuggestion implements spec.md §4.4's refine_suggestion: re-enable
// every problem rule except sug, also re-enable sug's feature rule if sug
// is an update rule, re-enable weak rules, then re-run SAT. The first
// additional conflict's core, minus sug and minus rules already in
// problem, is folded in as the next candidate; iteration continues until
// the candidate set stabilizes to a single rule (accepted) or forks into
// mutually exclusive alternatives (all returned, caller must re-solve
// after picking one).
func RefineSuggestion(solver *sat.Solver, store *rules.Store, f flags.Flags, problem []rules.Idx, sug rules.Idx, essentialOk bool) []Solution {
	disabled := map[rules.Idx]bool{}
	for _, idx := range problem {
		disabled[idx] = true
	}
	disabled[sug] = false

	reenable := func() {
		for _, idx := range problem {
			if idx != sug {
				store.Enable(idx)
			}
		}
		store.Disable(sug)
		if store.ClassOf(sug) == rules.Update {
			// spec.md: "re-enable its feature rule if sug is an update
			// rule" — the feature rule for the same solvable sits
			// immediately before the update range in construction order
			// and shares r.Solvable.
			fs, fe := store.Range(rules.Feature)
			want := store.Rule(sug).Solvable
			for i := fs; i < fe; i++ {
				if store.Rule(i).Solvable == want {
					store.Enable(i)
				}
			}
		}
		cs, ce := store.Range(rules.Choice)
		for i := cs; i < ce; i++ {
			store.Enable(i)
		}
		bs, be := store.Range(rules.Best)
		for i := bs; i < be; i++ {
			store.Enable(i)
		}
	}
	reenable()

	result := solver.Run(f, nil, nil, nil)
	if result.OK {
		return []Solution{{Actions: []Action{ConvertSolution(store, sug)}}}
	}

	seen := map[rules.Idx]bool{}
	for _, idx := range problem {
		seen[idx] = true
	}
	seen[sug] = true

	var candidates []rules.Idx
	for _, core := range result.Problems {
		for _, idx := range core {
			if !seen[idx] {
				candidates = append(candidates, idx)
			}
		}
	}
	candidates = FindAllProblemRules(candidates)

	if len(candidates) == 0 {
		if !essentialOk {
			return RefineSuggestion(solver, store, f, problem, sug, true)
		}
		return nil
	}
	if len(candidates) == 1 {
		nextProblem := append(append([]rules.Idx(nil), problem...), sug)
		sub := RefineSuggestion(solver, store, f, nextProblem, candidates[0], essentialOk)
		if sub == nil {
			return []Solution{{Actions: []Action{ConvertSolution(store, sug)}}}
		}
		out := make([]Solution, len(sub))
		for i, s := range sub {
			out[i] = Solution{Actions: append([]Action{ConvertSolution(store, sug)}, s.Actions...)}
		}
		return out
	}

	out := make([]Solution, len(candidates))
	for i, c := range candidates {
		out[i] = Solution{Actions: []Action{ConvertSolution(store, sug), ConvertSolution(store, c)}}
	}
	return out
}

// Solve enumerates every Solution for a Problem by trying each of its
// rules in turn as the dropped suggestion, per spec.md §4.4.
func Solve(solver *sat.Solver, store *rules.Store, f flags.Flags, p Problem) []Solution {
	var out []Solution
	for _, idx := range FindAllProblemRules(p.Rules) {
		out = append(out, RefineSuggestion(solver, store, f, p.Rules, idx, false)...)
	}
	return out
}
