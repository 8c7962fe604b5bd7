package sat

import (
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
)

// ruleSatisfied reports whether any literal of r is currently true.
func ruleSatisfied(r *rules.Rule, dm decisionMap) bool {
	for _, l := range r.Literals {
		if litTrue(l, dm) {
			return true
		}
	}
	return false
}

// firstOpenLit returns the first literal of r that is neither true nor
// false, along with ok=true, or ok=false if every literal is already
// decided (the rule is either satisfied or should have conflicted).
func firstOpenLit(r *rules.Rule, dm decisionMap) (pool.Lit, bool) {
	for _, l := range r.Literals {
		if litUndef(l, dm) {
			return l, true
		}
	}
	return 0, false
}

// chooseLit picks the literal r should decide next. When the rule's open
// literals include more than one undecided "install" candidate (a
// requires or choice rule with several providers), it narrows them with
// policy_filter_unwanted(POLICY_MODE_CHOOSE) (spec.md §4.3 step 2) before
// picking the most-preferred one; any candidates the pruning pass left
// over are returned as alts so the caller can open a branch for them.
// Rules with at most one undecided positive literal, or no Policy
// attached, fall back to firstOpenLit's plain scan.
func (s *Solver) chooseLit(r *rules.Rule) (lit pool.Lit, alts []pool.Lit, ok bool) {
	if s.Policy == nil {
		l, ok := firstOpenLit(r, s.dm)
		return l, nil, ok
	}

	var positives []pool.Lit
	var negative pool.Lit
	haveNeg := false
	for _, l := range r.Literals {
		if !litUndef(l, s.dm) {
			continue
		}
		if l.Positive() {
			positives = append(positives, l)
		} else if !haveNeg {
			negative = l
			haveNeg = true
		}
	}

	if len(positives) == 0 {
		if haveNeg {
			return negative, nil, true
		}
		return 0, nil, false
	}
	if len(positives) == 1 {
		return positives[0], nil, true
	}

	cands := make([]pool.SolvableId, len(positives))
	for i, l := range positives {
		cands[i] = l.Solvable()
	}
	pruned := s.Policy.FilterUnwanted(cands, policy.Choose)
	if len(pruned) == 0 {
		return positives[0], nil, true
	}

	lits := make([]pool.Lit, len(pruned))
	for i, c := range pruned {
		lits[i] = pool.LitOf(c)
	}
	return lits[0], lits[1:], true
}

// propagateLearn runs Propagate, and on conflict performs first-UIP
// analysis and either learns a unit clause and reverts to level 1 (when
// the learnt clause is itself a unit) or learns a clause, reverts to
// backLevel, and assigns the asserting literal there. It returns false
// when the conflict cannot be resolved (level-1 conflict, i.e.
// unsolvable), matching spec.md §4.3's setpropagatelearn.
func (s *Solver) propagateLearn(level int, disableRules bool) (newLevel int, ok bool) {
	for {
		conflict, clean := s.Propagate()
		if clean {
			return level, true
		}

		if level == 1 {
			if s.AnalyzeUnsolvable(conflict, disableRules) {
				// A weak rule got disabled (or rules were force-disabled);
				// spec.md §4.3 says disabling produces no user-visible
				// problem, so restart propagation from the same snapshot
				// instead of reporting the pool unsolvable.
				continue
			}
			return 1, false
		}

		learnt, why, backLevel := s.Analyze(level, conflict)
		s.Revert(backLevel)
		idx := s.Rules.AddLearnt(why, learnt...)
		s.watch.attach(s.Rules, idx)

		if len(learnt) == 1 {
			s.assignForced(learnt[0], 1, idx)
			level = 1
		} else {
			s.assignForced(learnt[0], backLevel, idx)
			level = backLevel
		}
	}
}

// Result is the outcome of a full Run: either a consistent decisionmap
// (Problems empty) or one-or-more recorded unsolvable cores.
type Result struct {
	OK       bool
	Problems [][]rules.Idx
}

// Run drives the main CDCL loop spec.md §4.3 describes: seed the system
// solvable, propagate whatever the job/feature/update/infarch/dup rules
// force outright, then repeatedly pick a free decision from the first
// not-yet-satisfied rule in class order (job, then rpm, i.e. install
// causes before recommend/suggests-driven choices), pruning each
// decision's candidate set through Policy and propagating/backjumping
// after each, until every rule class has been walked with no open rule
// left. Weak classes (best, choice) are walked next and, on conflict,
// are disabled rather than producing a problem (spec.md's weak-rule
// semantics), so a single bad recommendation never blocks a solve.
// Afterwards the recommends/supplements phase pulls in weak wants, the
// orphan phase settles distupgrade/drop-orphans fallout, and a
// minimization pass revisits every open branch for a more-preferred
// equivalent decision.
func (s *Solver) Run(f flags.Flags, jobs job.Queue, dupMap, dupInvolved map[pool.SolvableId]bool) Result {
	s.assignForced(pool.LitOf(pool.SystemSolvable), 1, rules.NoRule)

	if _, ok := s.propagateLearn(1, true); !ok {
		return Result{OK: false, Problems: s.Problems()}
	}

	order := []rules.Class{rules.JobClass, rules.RPM, rules.Update, rules.Feature, rules.InfArch, rules.Dup}
	weak := []rules.Class{rules.Best, rules.Choice}

	for pass := 0; pass < 2; pass++ {
		progressed := true
		for progressed {
			progressed = false
			for _, class := range order {
				start, end := s.Rules.Range(class)
				for idx := start; idx < end; idx++ {
					r := s.Rules.Rule(idx)
					if !r.Enabled || r.Unit() {
						continue
					}
					if ruleSatisfied(r, s.dm) {
						continue
					}
					lit, alts, ok := s.chooseLit(r)
					if !ok {
						continue
					}
					level := s.Decide(lit, idx)
					if len(alts) > 0 {
						s.PushBranch(Branch{Level: level, Candidates: alts, Rule: idx})
					}
					progressed = true
					if _, ok := s.propagateLearn(level, false); !ok {
						return Result{OK: false, Problems: s.Problems()}
					}
				}
			}
		}
	}

	for _, class := range weak {
		start, end := s.Rules.Range(class)
		for idx := start; idx < end; idx++ {
			r := s.Rules.Rule(idx)
			if !r.Enabled || r.Unit() {
				continue
			}
			if ruleSatisfied(r, s.dm) {
				continue
			}
			lit, alts, ok := s.chooseLit(r)
			if !ok {
				continue
			}
			level := s.Decide(lit, idx)
			if len(alts) > 0 {
				s.PushBranch(Branch{Level: level, Candidates: alts, Rule: idx})
			}
			if _, ok := s.propagateLearn(level, false); !ok {
				s.Revert(level)
				s.Rules.Disable(idx)
				if _, ok := s.propagateLearn(s.Level(), true); !ok {
					return Result{OK: false, Problems: s.Problems()}
				}
			}
		}
	}

	s.runWeakWants(f)

	if !s.runOrphans(jobs, dupMap, dupInvolved) {
		return Result{OK: false, Problems: s.Problems()}
	}

	s.minimize()

	return Result{OK: true}
}

// runWeakWants is spec.md §4.3 step 6: for every installed solvable,
// bring in the best still-undecided Recommends candidate (skipped
// outright when IgnoreRecommended is set), then, unless
// AddAlreadyRecommended asks for every qualifying supplement regardless
// of overlap, bring in any undecided solvable whose Supplements relation
// the current decision set already satisfies. Both passes are soft: a
// candidate that does not propagate cleanly is simply left out, never
// turned into a problem, since recommends/supplements are weak wants.
func (s *Solver) runWeakWants(f flags.Flags) {
	if !f.IgnoreRecommended {
		for _, sv := range s.Pool.AllSolvables() {
			installed, _, ok := s.Decided(sv)
			if !ok || !installed {
				continue
			}
			for _, rec := range s.Pool.Solvable(sv).Recommends {
				s.tryWant(rec, policy.Recommend)
			}
		}
	}

	for _, sv := range s.Pool.AllSolvables() {
		if !s.dm.undecided(sv) {
			continue
		}
		for _, sup := range s.Pool.Solvable(sv).Supplements {
			if !s.dependencyCurrentlyMet(sup) {
				continue
			}
			if !f.AddAlreadyRecommended && s.alreadyRecommendedElsewhere(sup) {
				continue
			}
			s.wantSolvable(sv)
			break
		}
	}
}

// alreadyRecommendedElsewhere reports whether some other installed
// solvable's Recommends already resolves to one of sup's providers, the
// overlap supplements re-evaluation skips unless AddAlreadyRecommended
// is set.
func (s *Solver) alreadyRecommendedElsewhere(sup pool.Id) bool {
	providers := s.Pool.WhatProvides(sup)
	for _, sv := range s.Pool.AllSolvables() {
		installed, _, ok := s.Decided(sv)
		if !ok || !installed {
			continue
		}
		for _, rec := range s.Pool.Solvable(sv).Recommends {
			for _, rp := range s.Pool.WhatProvides(rec) {
				for _, p := range providers {
					if rp == p {
						return true
					}
				}
			}
		}
	}
	return false
}

// dependencyCurrentlyMet reports whether d already resolves against at
// least one installed-as-of-now solvable, the condition spec.md's
// supplements re-evaluation gates on.
func (s *Solver) dependencyCurrentlyMet(d pool.Id) bool {
	for _, c := range s.Pool.WhatProvides(d) {
		if installed, _, ok := s.Decided(c); ok && installed {
			return true
		}
	}
	return false
}

// tryWant free-decides the best Policy-pruned provider of dep, reverting
// the attempt without complaint if it conflicts.
func (s *Solver) tryWant(dep pool.Id, mode policy.Mode) {
	var open []pool.SolvableId
	for _, c := range s.Pool.WhatProvides(dep) {
		if s.dm.undecided(c) {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		return
	}
	if s.Policy != nil {
		open = s.Policy.FilterUnwanted(open, mode)
	}
	if len(open) == 0 {
		return
	}
	s.wantSolvable(open[0])
}

// wantSolvable free-decides sv directly, reverting without complaint if
// it conflicts.
func (s *Solver) wantSolvable(sv pool.SolvableId) {
	if !s.dm.undecided(sv) {
		return
	}
	level := s.Decide(pool.LitOf(sv), rules.NoRule)
	if _, ok := s.propagateLearn(level, false); !ok {
		s.Revert(level)
	}
}

// runOrphans is spec.md §4.3 step 7: under a DropOrphans job, every
// installed solvable the distupgrade pass considered but found no
// replacement for (dupInvolved but not dupMap) is erased. Each removal
// is re-propagated; if erasing it turns out to strand a rule that
// depended on it, the removal is rolled back and the orphan stays
// installed. No problem is recorded for such an orphan.
func (s *Solver) runOrphans(jobs job.Queue, dupMap, dupInvolved map[pool.SolvableId]bool) bool {
	drop := false
	for _, j := range jobs {
		if j.How == job.DropOrphans {
			drop = true
			break
		}
	}
	if !drop || len(dupInvolved) == 0 {
		return true
	}

	for sv := range dupInvolved {
		if dupMap[sv] {
			continue
		}
		installed, _, ok := s.Decided(sv)
		if !ok || !installed {
			continue
		}

		level := s.Level() + 1
		s.assignForced(pool.LitOf(sv).Negate(), level, rules.NoRule)

		if _, ok := s.propagateLearn(level, false); !ok {
			// Dropping the orphan stranded something that still needed
			// it; keep it installed instead of letting the solve fail.
			s.Revert(level)
			if _, ok := s.propagateLearn(s.Level(), true); !ok {
				return false
			}
		}
	}
	return true
}
