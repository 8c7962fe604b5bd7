package rules

import (
	"sort"

	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/pool"
)

// Builder emits rule classes into a Store from pool metadata and a job
// queue, in the strict order spec.md §4.1 requires: RPM, feature, update,
// job, infarch, dup, best, choice. Each Build* method is idempotent given
// the same Pool/Flags/job queue.
type Builder struct {
	Pool  *pool.IdSpace
	Store *Store
	Flags flags.Flags

	// Multiversion marks solvable ids for which multiple EVRs may
	// coexist (spec.md's Multiversion definition).
	Multiversion map[pool.SolvableId]bool

	// allowedArchs carries forward, per name, the set of architectures
	// infarch rules decided not to exclude (spec.md §4.1's "allowedarchs").
	allowedArchs map[pool.Id]map[pool.Id]bool

	// dupMap/dupInvolvedMap record the distupgrade target/considered
	// sets built by BuildDup, consumed when deciding installed packages.
	dupMap         map[pool.SolvableId]bool
	dupInvolvedMap map[pool.SolvableId]bool

	// bestUpdateMap records installed packages with a pending "best
	// candidate" obligation, consulted by BuildBest.
	bestUpdateMap map[pool.SolvableId]bool
}

// NewBuilder returns a Builder over p and s using the given flags.
func NewBuilder(p *pool.IdSpace, s *Store, f flags.Flags) *Builder {
	return &Builder{
		Pool:           p,
		Store:          s,
		Flags:          f,
		Multiversion:   make(map[pool.SolvableId]bool),
		allowedArchs:   make(map[pool.Id]map[pool.Id]bool),
		dupMap:         make(map[pool.SolvableId]bool),
		dupInvolvedMap: make(map[pool.SolvableId]bool),
		bestUpdateMap:  make(map[pool.SolvableId]bool),
	}
}

// installable reports whether a solvable is a legal installation target
// at all, independent of its dependency edges.
func (b *Builder) installable(s pool.SolvableId) bool {
	return !b.Pool.Solvable(s).Disabled
}

// reachable computes the BFS frontier of spec.md §4.1's "RPM rules": every
// installed solvable, every job target, and anything reachable by
// requires, recommends or suggests from those seeds. Recommends/suggests
// only enlarge the frontier; they never emit RPM rules of their own.
func (b *Builder) reachable(jobs job.Queue) []pool.SolvableId {
	seen := make(map[pool.SolvableId]bool)
	var queue []pool.SolvableId

	push := func(s pool.SolvableId) {
		if s != pool.NoSolvable && !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}

	push(pool.SystemSolvable)
	for _, s := range b.Pool.AllSolvables() {
		if b.Pool.Installed(s) {
			push(s)
		}
	}
	for _, j := range jobs {
		for _, s := range b.jobTargets(j) {
			push(s)
		}
	}

	for i := 0; i < len(queue); i++ {
		s := queue[i]
		sv := b.Pool.Solvable(s)
		for _, d := range append(append([]pool.Id{}, sv.Requires...), append(sv.Recommends, sv.Suggests...)...) {
			for _, p := range b.Pool.WhatProvides(d) {
				push(p)
			}
		}
	}
	return queue
}

func (b *Builder) jobTargets(j job.Job) []pool.SolvableId {
	switch j.What {
	case job.WhatSolvable:
		return []pool.SolvableId{j.Solvable}
	case job.WhatOneOf:
		return j.OneOf
	case job.WhatName:
		return b.Pool.WhatProvides(j.Id)
	case job.WhatProvides:
		return b.Pool.WhatProvides(j.Id)
	case job.WhatRepo, job.WhatAll:
		var out []pool.SolvableId
		for _, s := range b.Pool.AllSolvables() {
			if j.What == job.WhatAll || b.Pool.Solvable(s).Repo == j.Repo {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// BuildRPM emits RPM_NOT_INSTALLABLE, requires, conflicts and obsoletes
// clauses for every solvable reachable from the job queue, then sorts and
// deduplicates them (libsolv's unifyRules).
func (b *Builder) BuildRPM(jobs job.Queue) {
	dontfix := make(map[pool.SolvableId]bool)
	for _, s := range b.Pool.AllSolvables() {
		if b.Pool.Installed(s) {
			dontfix[s] = true
		}
	}

	for _, s := range b.reachable(jobs) {
		sv := b.Pool.Solvable(s)
		lit := pool.LitOf(s)

		if !b.installable(s) {
			b.Store.AddUnit(lit.Negate(), RPM, NotInstallable)
			continue
		}

		for i, req := range sv.Requires {
			providers := b.Pool.WhatProvides(req)
			if len(providers) == 0 {
				if dontfix[s] && !sv.Prereq[i] {
					// dontfix: a requirement that was already broken for
					// an installed, non-fixmap package is silently
					// suppressed rather than forcing removal.
					continue
				}
				b.Store.AddUnit(lit.Negate(), RPM, NothingProvidesDep)
				continue
			}
			clause := make([]pool.Lit, 0, len(providers)+1)
			clause = append(clause, lit.Negate())
			for _, p := range providers {
				clause = append(clause, pool.LitOf(p))
			}
			b.Store.AddClause(RPM, PackageRequires, clause...)
		}

		for _, con := range sv.Conflicts {
			for _, p := range b.Pool.WhatProvides(con) {
				if p == s {
					if b.Flags.AllowNameChange && !b.Pool.Flags.ForbidSelfConflicts {
						continue
					}
					b.Store.AddUnit(lit.Negate(), RPM, PackageConflicts)
					continue
				}
				if b.Multiversion[p] {
					others := b.otherVersions(p)
					clause := append([]pool.Lit{lit.Negate(), pool.LitOf(p).Negate()}, others...)
					b.Store.AddClause(RPM, PackageConflicts, clause...)
					continue
				}
				b.Store.AddClause(RPM, PackageConflicts, lit.Negate(), pool.LitOf(p).Negate())
			}
		}

		for _, obs := range sv.Obsoletes {
			for _, p := range b.Pool.WhatProvides(obs) {
				if !b.Pool.Installed(p) {
					continue
				}
				if b.Pool.Solvable(p).Name == sv.Name {
					if !b.Pool.Flags.ImplicitObsoleteUsesProvides {
						continue
					}
				}
				b.Store.AddClause(RPM, PackageObsoletes, lit.Negate(), pool.LitOf(p).Negate())
			}
		}
	}

	b.unifyRPM()
	b.Store.EndClass(RPM)
}

// otherVersions returns literals for every other solvable sharing p's
// name, used to weaken a multiversion patch conflict per spec.md §4.1.
func (b *Builder) otherVersions(p pool.SolvableId) []pool.Lit {
	name := b.Pool.Solvable(p).Name
	var out []pool.Lit
	for _, s := range b.Pool.WhatProvidesName(name) {
		if s != p {
			out = append(out, pool.LitOf(s))
		}
	}
	return out
}

// unifyRPM sorts the RPM range lexicographically and removes exact
// duplicate clauses (rather than deduping during emission, which would
// require an O(n) scan per candidate rule).
func (b *Builder) unifyRPM() {
	start := Idx(1)
	end := Idx(len(b.Store.rules))
	seen := make(map[string]bool)
	kept := b.Store.rules[:start]
	rs := append([]Rule(nil), b.Store.rules[start:end]...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].String() < rs[j].String() })
	for _, r := range rs {
		key := r.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	b.Store.rules = kept
}
