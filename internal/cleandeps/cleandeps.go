// Package cleandeps implements spec.md §4.5: given the installed set and
// the job queue that triggered a solve, determine which installed
// packages become transitively unneeded collateral of erase/update jobs
// with CleanDeps set.
package cleandeps

import (
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
)

// Map is the cleandepsmap spec.md names: the set of installed solvables
// that will be uninstalled as collateral.
type Map map[pool.SolvableId]bool

// Compute runs the two-phase pass described in spec.md §4.5 over every
// currently-installed solvable, given the job queue that drove the solve
// (used to derive the userinstalled set) and the subset of jobs that
// requested CleanDeps.
func Compute(p *pool.IdSpace, jobs job.Queue) Map {
	installed := p.AllSolvables()
	installedSet := make(map[pool.SolvableId]bool)
	for _, s := range installed {
		if p.Installed(s) {
			installedSet[s] = true
		}
	}

	userInstalled := deriveUserInstalled(p, jobs, installedSet)
	cleanTargets := deriveCleanTargets(jobs)

	im := make(map[pool.SolvableId]bool, len(installedSet))
	for s := range installedSet {
		if userInstalled[s] || !cleanTargets[s] {
			im[s] = true
		}
	}

	removePass(p, installedSet, im)
	result := addBackPass(p, installedSet, im)
	return result
}

// deriveUserInstalled marks every solvable explicitly named by a
// SOLVER_USERINSTALLED job, plus every positive install/update job
// target, as user-installed (spec.md's "all products and their buddies,
// all visible patterns, and all targets of positive job rules" — buddies
// and patterns have no analogue in this model beyond the job queue
// itself, since store-level metadata about products/patterns is outside
// the solver core's scope).
func deriveUserInstalled(p *pool.IdSpace, jobs job.Queue, installed map[pool.SolvableId]bool) map[pool.SolvableId]bool {
	out := make(map[pool.SolvableId]bool)
	for _, j := range jobs {
		switch j.How {
		case job.UserInstalled, job.Install, job.Update, job.Lock:
			switch j.What {
			case job.WhatSolvable:
				out[j.Solvable] = true
			case job.WhatName:
				for _, s := range p.WhatProvides(j.Id) {
					if installed[s] {
						out[s] = true
					}
				}
			case job.WhatOneOf:
				for _, s := range j.OneOf {
					out[s] = true
				}
			}
		}
	}
	return out
}

// deriveCleanTargets returns the set of installed solvables named by an
// Erase or Update job with CleanDeps set.
func deriveCleanTargets(jobs job.Queue) map[pool.SolvableId]bool {
	out := make(map[pool.SolvableId]bool)
	for _, j := range jobs {
		if !j.CleanDeps || (j.How != job.Erase && j.How != job.Update) {
			continue
		}
		switch j.What {
		case job.WhatSolvable:
			out[j.Solvable] = true
		case job.WhatOneOf:
			for _, s := range j.OneOf {
				out[s] = true
			}
		}
	}
	return out
}

// removePass iteratively strips im-membership from any package whose
// requires/recommends is driven exclusively by members of the remove
// queue (installed minus im) — i.e. every package that still needed it
// has itself already left im. A supplements edge whose target graph no
// longer reaches any im member is stripped too; packages still
// referenced while evaluating a supplements expression are "pinned" —
// re-added to im, per spec.md §4.5's remove pass description.
func removePass(p *pool.IdSpace, installed map[pool.SolvableId]bool, im map[pool.SolvableId]bool) {
	for {
		changed := false
		for s := range installed {
			if !im[s] {
				continue
			}
			if isOrphaned(p, s, installed, im) {
				delete(im, s)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for s := range installed {
		if im[s] {
			continue
		}
		if supplementsStillNeeded(p, s, installed, im) {
			im[s] = true
		}
	}
}

// isOrphaned reports whether installed package s has at least one
// requirer/recommender and every one of them has already left im (the
// remove queue), meaning s's only reason to remain installed is gone. A
// package nothing ever required is left alone — it was kept installed
// on its own account, not as somebody else's dependency.
func isOrphaned(p *pool.IdSpace, s pool.SolvableId, installed, im map[pool.SolvableId]bool) bool {
	hasRequirer := false
	for other := range installed {
		if other == s {
			continue
		}
		sv := p.Solvable(other)
		for _, dep := range append(append([]pool.Id{}, sv.Requires...), sv.Recommends...) {
			for _, prov := range p.WhatProvides(dep) {
				if prov == s {
					hasRequirer = true
					if im[other] {
						return false
					}
				}
			}
		}
	}
	return hasRequirer
}

// supplementsStillNeeded reports whether some im member's dependency
// graph still requires a capability s supplements, meaning s must be
// pinned back into im.
func supplementsStillNeeded(p *pool.IdSpace, s pool.SolvableId, installed, im map[pool.SolvableId]bool) bool {
	sv := p.Solvable(s)
	for _, dep := range sv.Supplements {
		for _, prov := range p.WhatProvides(dep) {
			if installed[prov] && im[prov] {
				return true
			}
		}
	}
	return false
}

// addBackPass propagates forward from the surviving im set through
// requires/recommends; everything reached stays, everything else becomes
// a cleandeps casualty (spec.md §4.5's add-back pass).
func addBackPass(p *pool.IdSpace, installed map[pool.SolvableId]bool, im map[pool.SolvableId]bool) Map {
	reached := make(map[pool.SolvableId]bool, len(im))
	var queue []pool.SolvableId
	for s := range im {
		reached[s] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		sv := p.Solvable(s)
		for _, dep := range append(append([]pool.Id{}, sv.Requires...), sv.Recommends...) {
			for _, prov := range p.WhatProvides(dep) {
				if installed[prov] && !reached[prov] {
					reached[prov] = true
					queue = append(queue, prov)
				}
			}
		}
	}

	result := make(Map)
	for s := range installed {
		if !reached[s] {
			result[s] = true
		}
	}
	return result
}

// GetUnneeded reuses the cleandeps engine outside of a job context: it
// computes every installed package unreachable from the userinstalled
// roots. When filtered is true it additionally runs Tarjan SCC over the
// requires/recommends/supplements graph and removes cycles that only
// refer to already-unneeded packages, so the output is a true lower-set
// (spec.md §4.5's solver_get_unneeded).
func GetUnneeded(p *pool.IdSpace, userInstalled map[pool.SolvableId]bool, filtered bool) []pool.SolvableId {
	installed := make(map[pool.SolvableId]bool)
	for _, s := range p.AllSolvables() {
		if p.Installed(s) {
			installed[s] = true
		}
	}

	reached := make(map[pool.SolvableId]bool)
	var queue []pool.SolvableId
	for s := range userInstalled {
		if installed[s] && !reached[s] {
			reached[s] = true
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		sv := p.Solvable(s)
		for _, dep := range append(append([]pool.Id{}, sv.Requires...), sv.Recommends...) {
			for _, prov := range p.WhatProvides(dep) {
				if installed[prov] && !reached[prov] {
					reached[prov] = true
					queue = append(queue, prov)
				}
			}
		}
	}

	var unneeded []pool.SolvableId
	unneededSet := make(map[pool.SolvableId]bool)
	for s := range installed {
		if !reached[s] {
			unneeded = append(unneeded, s)
			unneededSet[s] = true
		}
	}

	if !filtered || len(unneeded) == 0 {
		return sortIds(unneeded)
	}

	nodes := make([]int, len(unneeded))
	for i, s := range unneeded {
		nodes[i] = int(s)
	}
	adj := func(n int) []int {
		s := pool.SolvableId(n)
		sv := p.Solvable(s)
		var out []int
		for _, dep := range append(append(append([]pool.Id{}, sv.Requires...), sv.Recommends...), sv.Supplements...) {
			for _, prov := range p.WhatProvides(dep) {
				if unneededSet[prov] {
					out = append(out, int(prov))
				}
			}
		}
		return out
	}
	comps := policy.SCC(nodes, adj)

	keep := make(map[pool.SolvableId]bool)
	for _, comp := range comps {
		if len(comp) == 1 {
			keep[pool.SolvableId(comp[0])] = true
			continue
		}
		// A multi-member component that only refers to unneeded
		// packages is itself unneeded cruft introduced by a dependency
		// cycle; drop the whole component rather than keep it.
	}

	var out []pool.SolvableId
	for s := range keep {
		out = append(out, s)
	}
	return sortIds(out)
}

func sortIds(ids []pool.SolvableId) []pool.SolvableId {
	out := append([]pool.SolvableId(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
