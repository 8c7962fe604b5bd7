// Package sat implements the CDCL-style engine spec.md §4.3 describes:
// watched-literal unit propagation, first-UIP conflict analysis, learned
// clauses, decision-level backtracking and branch stacking. It knows
// nothing about packages — only about literals over pool.SolvableId and
// clauses from a rules.Store.
package sat

import (
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
	"github.com/solvectl/solvectl/internal/trace"
)

// Branch is one saved "open alternative set": a point during the main
// loop where more than one literal could legally be decided next. The
// branch stack drives both backtracking (Revert preserves branch frames)
// and the minimization pass (spec.md §4.3 step 9).
type Branch struct {
	Level      int
	Candidates []pool.Lit // untaken alternatives, most-preferred first
	Rule       rules.Idx  // the rule this branch was opened from
}

// Conflict is returned by Propagate when unit propagation falsifies a
// clause.
type Conflict struct {
	Rule rules.Idx
}

// Solver holds all per-run scratch state: decision queue, watch lists,
// branch stack and conflict bookkeeping. A Solver is single-threaded and
// non-reentrant (spec.md §5); it may be reused across multiple Run calls
// against the same Store as long as learnt rules are Shrunk back first.
type Solver struct {
	Pool   *pool.IdSpace
	Rules  *rules.Store
	Policy *policy.Policy

	dm             decisionMap
	decisionq      []pool.Lit
	decisionWhy    []int // +ruleIdx forced, -ruleIdx free decision, 0 root
	decisionLevel  []int
	propagateIndex int

	watch *watchTable

	branches []Branch

	// problems holds, per unsolvable core found, the zero-delimited rule
	// list spec.md §4.4 describes (here just a slice of rule indices per
	// problem, no sentinel needed since Go slices carry their own length).
	problems [][]rules.Idx

	Trace *trace.Tracer
}

// New returns a Solver with an initialized, empty decision state over
// store. Callers must have already run CreateWhatProvides on p and
// finished building store before constructing a Solver, since New
// attaches watches to every currently-enabled non-unit rule.
func New(p *pool.IdSpace, store *rules.Store, pl *policy.Policy) *Solver {
	s := &Solver{
		Pool:   p,
		Rules:  store,
		Policy: pl,
		dm:     make(decisionMap),
		watch:  newWatchTable(),
		Trace:  &trace.Tracer{},
	}
	s.attachAll()
	return s
}

func (s *Solver) attachAll() {
	for i := rules.Idx(1); i <= rules.Idx(s.Rules.Len()); i++ {
		r := s.Rules.Rule(i)
		if r.Enabled && len(r.Literals) >= 2 {
			s.watch.attach(s.Rules, i)
		}
	}
}

// Level returns the current decision level (the number of free decisions
// taken so far, plus 1, matching spec.md's level-1 base for the system
// solvable).
func (s *Solver) Level() int {
	if len(s.decisionLevel) == 0 {
		return 1
	}
	return s.decisionLevel[len(s.decisionLevel)-1]
}

// Decided exposes the read-only view other packages (policy-adjacent
// callers, cleandeps, problems) need to ask "is s currently decided, and
// how".
func (s *Solver) Decided(sv pool.SolvableId) (installed bool, level int, ok bool) {
	v, has := s.dm[sv]
	if !has || v == 0 {
		return false, 0, false
	}
	if v > 0 {
		return true, v, true
	}
	return false, -v, true
}

// DecisionQueue returns the full, ordered trail of decided literals.
func (s *Solver) DecisionQueue() []pool.Lit { return append([]pool.Lit(nil), s.decisionq...) }

// assignForced pushes a propagation-forced literal onto the trail.
func (s *Solver) assignForced(lit pool.Lit, level int, reason rules.Idx) {
	s.dm.assign(lit, level)
	s.decisionq = append(s.decisionq, lit)
	s.decisionWhy = append(s.decisionWhy, int(reason))
	s.decisionLevel = append(s.decisionLevel, level)
}

// Decide pushes a free decision (not forced by unit propagation) onto the
// trail at a new level, recording its originating rule as a negative
// reason per spec.md §3.
func (s *Solver) Decide(lit pool.Lit, reason rules.Idx) int {
	level := s.Level() + 1
	s.dm.assign(lit, level)
	s.decisionq = append(s.decisionq, lit)
	s.decisionWhy = append(s.decisionWhy, -int(reason))
	s.decisionLevel = append(s.decisionLevel, level)
	return level
}

// Propagate walks un-propagated decisions against the watch table until
// either the queue is drained (ok=true) or a clause is falsified
// (ok=false, with the falsified rule's index).
func (s *Solver) Propagate() (rules.Idx, bool) {
	for s.propagateIndex < len(s.decisionq) {
		decided := s.decisionq[s.propagateIndex]
		level := s.decisionLevel[s.propagateIndex]
		s.propagateIndex++

		falsified := decided.Negate()
		chain := append([]rules.Idx(nil), s.watch.chains[falsified]...)
		for _, idx := range chain {
			r := s.Rules.Rule(idx)
			if !r.Enabled {
				continue
			}
			pos := s.watch.pos[idx]
			var myPos, otherPos int
			if r.Literals[pos[0]] == falsified {
				myPos, otherPos = pos[0], pos[1]
			} else if r.Literals[pos[1]] == falsified {
				myPos, otherPos = pos[1], pos[0]
			} else {
				// Stale chain entry from an earlier rehook; skip.
				continue
			}
			other := r.Literals[otherPos]
			if litTrue(other, s.dm) {
				continue
			}

			found := -1
			for i, l := range r.Literals {
				if i == myPos || i == otherPos {
					continue
				}
				if !litFalse(l, s.dm) {
					found = i
					break
				}
			}
			if found >= 0 {
				s.watch.rehook(s.Rules, idx, falsified, myPos, otherPos, found)
				continue
			}

			if litFalse(other, s.dm) {
				return idx, false
			}
			s.assignForced(other, level, idx)
		}
	}
	return 0, true
}

// Revert pops decisions down to (but not including) level, undoing their
// decisionmap entries and rewinding propagateIndex. Branch frames at or
// above level are dropped; earlier frames are preserved, matching
// spec.md §4.3's revert semantics.
func (s *Solver) Revert(level int) {
	n := len(s.decisionq)
	for n > 0 && s.decisionLevel[n-1] >= level {
		s.dm.unassign(s.decisionq[n-1].Solvable())
		n--
	}
	s.decisionq = s.decisionq[:n]
	s.decisionWhy = s.decisionWhy[:n]
	s.decisionLevel = s.decisionLevel[:n]
	if s.propagateIndex > n {
		s.propagateIndex = n
	}

	bn := len(s.branches)
	for bn > 0 && s.branches[bn-1].Level >= level {
		bn--
	}
	s.branches = s.branches[:bn]
}

// PushBranch records an open alternative set at the current level.
func (s *Solver) PushBranch(b Branch) { s.branches = append(s.branches, b) }

// Branches exposes the open-branch stack, e.g. for
// list-problems/Alternatives reporting (SPEC_FULL.md §4).
func (s *Solver) Branches() []Branch { return append([]Branch(nil), s.branches...) }

// minimize is spec.md §4.3 step 9: walk the branch stack in reverse,
// and for every branch whose decision is still live, try each untaken
// alternative in preference order; the first that still propagates
// cleanly replaces the original decision, otherwise the original
// decision is restored. This is what lets §5's termination argument
// treat every decided solvable as the most-preferred choice consistent
// with everything decided before it, not just whichever one propagation
// order happened to try first.
func (s *Solver) minimize() {
	branches := s.Branches()
	for i := len(branches) - 1; i >= 0; i-- {
		s.minimizeBranch(branches[i])
	}
}

func (s *Solver) minimizeBranch(b Branch) {
	origIdx := -1
	for j, lvl := range s.decisionLevel {
		if lvl == b.Level && s.decisionWhy[j] == -int(b.Rule) {
			origIdx = j
			break
		}
	}
	if origIdx < 0 {
		// Already superseded by a later revert/learnt backjump.
		return
	}
	orig := s.decisionq[origIdx]

	for _, alt := range b.Candidates {
		if alt == orig {
			continue
		}
		s.Revert(b.Level)
		newLevel := s.Decide(alt, b.Rule)
		if _, ok := s.propagateLearn(newLevel, false); ok {
			return
		}
	}

	s.Revert(b.Level)
	s.Decide(orig, b.Rule)
	s.propagateLearn(b.Level, false)
}

// Problems returns every unsolvable core recorded so far.
func (s *Solver) Problems() [][]rules.Idx { return s.problems }

// recordProblem appends a new unsolvable core.
func (s *Solver) recordProblem(ruleIdxs []rules.Idx) {
	s.problems = append(s.problems, ruleIdxs)
}
