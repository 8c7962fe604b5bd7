package sat

import "github.com/solvectl/solvectl/internal/pool"

// decisionMap implements spec.md §3's decisionmap: 0 means undecided, a
// positive value is the level at which the solvable was installed, a
// negative value is the (negated) level at which it was forbidden.
type decisionMap map[pool.SolvableId]int

func (dm decisionMap) level(s pool.SolvableId) int {
	v := dm[s]
	if v < 0 {
		return -v
	}
	return v
}

func (dm decisionMap) undecided(s pool.SolvableId) bool { return dm[s] == 0 }

func litTrue(lit pool.Lit, dm decisionMap) bool {
	v := dm[lit.Solvable()]
	if v == 0 {
		return false
	}
	if lit.Positive() {
		return v > 0
	}
	return v < 0
}

func litFalse(lit pool.Lit, dm decisionMap) bool {
	v := dm[lit.Solvable()]
	if v == 0 {
		return false
	}
	if lit.Positive() {
		return v < 0
	}
	return v > 0
}

func litUndef(lit pool.Lit, dm decisionMap) bool { return dm[lit.Solvable()] == 0 }

// assign records decisionmap[s] = ±level (install if lit is positive,
// forbid if negative), matching spec.md §3 invariant 5.
func (dm decisionMap) assign(lit pool.Lit, level int) {
	if lit.Positive() {
		dm[lit.Solvable()] = level
	} else {
		dm[lit.Solvable()] = -level
	}
}

func (dm decisionMap) unassign(s pool.SolvableId) { delete(dm, s) }
