package rules

import (
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
)

// BuildFeatureAndUpdate emits one feature rule and one update rule per
// installed solvable, in SolvableId order (spec.md §4.1). When the update
// rule is identical to the feature rule, the feature rule is zeroed (down
// to a trivial self-tautology) to save propagation work, per spec.md
// §4.1's stated optimization.
func (b *Builder) BuildFeatureAndUpdate(pl *policy.Policy) {
	for _, s := range b.Pool.AllSolvables() {
		if !b.Pool.Installed(s) {
			continue
		}
		lit := pool.LitOf(s)

		featureLits := litsFor(lit, pl.FindUpdatePackages(s, true))
		updateLits := litsFor(lit, pl.FindUpdatePackages(s, false))

		featureIdx := b.Store.AddClause(Feature, ReasonNone, featureLits...)
		b.Store.rules[featureIdx].Solvable = s
		updateIdx := b.Store.AddClause(Update, ReasonNone, updateLits...)
		b.Store.rules[updateIdx].Solvable = s

		if sameSet(featureLits, updateLits) {
			b.Store.rules[featureIdx].Literals = []pool.Lit{lit}
		}
	}
	b.Store.EndClass(Feature)
	b.Store.EndClass(Update)
}

func litsFor(self pool.Lit, cands []pool.SolvableId) []pool.Lit {
	out := make([]pool.Lit, 0, len(cands)+1)
	out = append(out, self)
	for _, c := range cands {
		out = append(out, pool.LitOf(c))
	}
	return out
}

func sameSet(a, b []pool.Lit) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[pool.Lit]bool, len(a))
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		if !set[l] {
			return false
		}
	}
	return true
}

// BuildJob emits one or more clauses per job queue entry, recording, for
// each rule, the job index it came from (spec.md's ruletojob).
func (b *Builder) BuildJob(jobs job.Queue) {
	for i, j := range jobs {
		switch j.How {
		case job.Install:
			targets := b.jobTargets(j)
			if j.What == job.WhatOneOf {
				lits := make([]pool.Lit, 0, len(targets))
				for _, t := range targets {
					lits = append(lits, pool.LitOf(t))
				}
				b.Store.AddJob(i, lits...)
				continue
			}
			lits := make([]pool.Lit, 0, len(targets))
			for _, t := range targets {
				lits = append(lits, pool.LitOf(t))
			}
			if len(lits) == 0 {
				continue
			}
			b.Store.AddJob(i, lits...)
		case job.Erase, job.Lock:
			for _, t := range b.jobTargets(j) {
				b.Store.AddJob(i, pool.LitOf(t).Negate())
			}
		case job.Update, job.Distupgrade, job.Verify, job.DropOrphans, job.UserInstalled:
			// These job kinds drive the main loop's decision passes and
			// the cleandeps computation directly; they do not, by
			// themselves, emit job-class clauses (spec.md §4.1 scopes job
			// rules to explicit selections only).
		}
	}
	b.Store.EndClass(JobClass)
}

// BuildInfArch emits ¬p for every solvable whose architecture is
// strictly inferior to the best available for its name, unless
// Flags.NoInfArchCheck is set (spec.md's NO_INFARCHCHECK).
func (b *Builder) BuildInfArch() {
	if b.Flags.NoInfArchCheck {
		b.Store.EndClass(InfArch)
		return
	}

	byName := make(map[pool.Id][]pool.SolvableId)
	for _, s := range b.Pool.AllSolvables() {
		sv := b.Pool.Solvable(s)
		byName[sv.Name] = append(byName[sv.Name], s)
	}

	for name, cands := range byName {
		best := -1
		for _, c := range cands {
			if r := policy.ArchRank(b.Pool.Str(b.Pool.Solvable(c).Arch)); r > best {
				best = r
			}
		}
		allowed := b.allowedArchs[name]
		if allowed == nil {
			allowed = make(map[pool.Id]bool)
			b.allowedArchs[name] = allowed
		}
		for _, c := range cands {
			arch := b.Pool.Solvable(c).Arch
			rank := policy.ArchRank(b.Pool.Str(arch))
			if rank == best {
				allowed[arch] = true
				continue
			}
			if b.Pool.Installed(c) || allowed[arch] {
				continue
			}
			idx := b.Store.AddUnit(pool.LitOf(c).Negate(), InfArch, ReasonNone)
			b.Store.rules[idx].Solvable = c
		}
	}
	b.Store.EndClass(InfArch)
}

// BuildDup builds dupMap/dupInvolvedMap from SOLVER_DISTUPGRADE jobs and
// emits ¬p for every installed package not identical to any dup-map
// solvable, forcing its replacement.
func (b *Builder) BuildDup(jobs job.Queue) {
	for _, j := range jobs {
		if j.How != job.Distupgrade {
			continue
		}
		for _, s := range b.jobTargets(j) {
			b.dupInvolvedMap[s] = true
			if !b.Pool.Installed(s) {
				b.dupMap[s] = true
			}
		}
	}

	for s := range b.dupInvolvedMap {
		if !b.Pool.Installed(s) || b.dupMap[s] {
			continue
		}
		sv := b.Pool.Solvable(s)
		identical := false
		for d := range b.dupMap {
			dv := b.Pool.Solvable(d)
			if dv.Name == sv.Name && dv.Evr == sv.Evr && dv.Arch == sv.Arch {
				identical = true
				break
			}
		}
		if !identical {
			idx := b.Store.AddUnit(pool.LitOf(s).Negate(), Dup, ReasonNone)
			b.Store.rules[idx].Solvable = s
		}
	}
	b.Store.EndClass(Dup)
}

// DupMap exposes the distupgrade acceptable-target set for the main loop
// and cleandeps.
func (b *Builder) DupMap() map[pool.SolvableId]bool { return b.dupMap }

// DupInvolved exposes the distupgrade considered set.
func (b *Builder) DupInvolved() map[pool.SolvableId]bool { return b.dupInvolvedMap }

// BuildBest emits best rules for SOLVER_FORCEBEST install jobs and for
// every installed package carrying a pending best-update obligation
// (spec.md §4.1). Candidates are filtered by Recommend-mode policy
// (policy.Recommend), i.e. never drop an already-installed candidate.
func (b *Builder) BuildBest(jobs job.Queue, pl *policy.Policy) {
	for i, j := range jobs {
		if j.How != job.Install || !j.ForceBest {
			continue
		}
		targets := b.jobTargets(j)
		best := pl.FilterUnwanted(targets, policy.Recommend)
		if len(best) == 0 {
			continue
		}
		lits := make([]pool.Lit, 0, len(best))
		for _, t := range best {
			lits = append(lits, pool.LitOf(t))
		}
		idx := b.Store.AddWeak(Best, lits...)
		b.Store.rules[idx].JobIndex = i
	}

	for s := range b.bestUpdateMap {
		var source []pool.SolvableId
		if b.Flags.BestObeyPolicy {
			source = pl.FindUpdatePackages(s, false)
		} else {
			source = pl.FindUpdatePackages(s, true)
		}
		best := pl.FilterUnwanted(source, policy.Recommend)
		if len(best) == 0 {
			continue
		}
		lits := make([]pool.Lit, 0, len(best))
		for _, t := range best {
			lits = append(lits, pool.LitOf(t))
		}
		idx := b.Store.AddWeak(Best, lits...)
		b.Store.rules[idx].Solvable = s
	}
	b.Store.EndClass(Best)
}

// MarkBestUpdate schedules s for a best-rule obligation (the
// bestupdatemap), called by the solver when it decides s needs one.
func (b *Builder) MarkBestUpdate(s pool.SolvableId) { b.bestUpdateMap[s] = true }

// BuildChoice emits, for every RPM requires rule of the form
// "¬A ∨ p1 ∨ … ∨ pk", a weak duplicate restricted to whichever pi policy
// would independently prefer over a currently-blocked installed package,
// per spec.md §4.1. Choice rules are always weak.
func (b *Builder) BuildChoice(pl *policy.Policy) {
	start, end := b.Store.Range(RPM)
	for idx := start; idx < end; idx++ {
		r := b.Store.rules[idx]
		if r.Reason != PackageRequires || len(r.Literals) < 3 {
			continue
		}
		var cands []pool.SolvableId
		for _, l := range r.Literals[1:] {
			cands = append(cands, l.Solvable())
		}
		preferred := pl.FilterUnwanted(cands, policy.Choose)
		if len(preferred) == 0 || len(preferred) == len(cands) {
			continue
		}
		lits := make([]pool.Lit, 0, len(preferred)+1)
		lits = append(lits, r.Literals[0])
		for _, p := range preferred {
			lits = append(lits, pool.LitOf(p))
		}
		b.Store.AddWeak(Choice, lits...)
	}
	b.Store.EndClass(Choice)
}
