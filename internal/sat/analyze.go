package sat

import (
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
)

// Analyze performs first-UIP conflict analysis (spec.md §4.3): walking
// the trail backward from the falsified rule, it resolves away every
// literal decided at the current level until exactly one remains (the
// unique implication point), producing a learnt clause that asserts that
// literal's negation once the solver backjumps to backLevel.
func (s *Solver) Analyze(level int, conflict rules.Idx) (learnt []pool.Lit, why []int, backLevel int) {
	seen := make(map[pool.SolvableId]bool)
	why = []int{int(conflict)}
	reasonRule := conflict
	trailPos := len(s.decisionq) - 1

	var uip pool.Lit
	var tail []pool.Lit
	counter := 0

	for {
		r := s.Rules.Rule(reasonRule)
		for _, lit := range r.Literals {
			v := lit.Solvable()
			if seen[v] {
				continue
			}
			lvl := s.dm.level(v)
			if lvl == 0 {
				continue
			}
			seen[v] = true
			if lvl == level {
				counter++
			} else {
				tail = append(tail, lit.Negate())
			}
		}

		for trailPos >= 0 && !seen[s.decisionq[trailPos].Solvable()] {
			trailPos--
		}
		if trailPos < 0 {
			break
		}
		cur := s.decisionq[trailPos]
		counter--
		if counter == 0 {
			uip = cur
			break
		}
		reasonWhy := s.decisionWhy[trailPos]
		if reasonWhy == 0 {
			uip = cur
			break
		}
		if reasonWhy < 0 {
			reasonWhy = -reasonWhy
		}
		reasonRule = rules.Idx(reasonWhy)
		why = append(why, int(reasonRule))
		trailPos--
	}

	learnt = append([]pool.Lit{uip.Negate()}, tail...)

	backLevel = 1
	for _, l := range learnt[1:] {
		if lv := s.dm.level(l.Solvable()); lv > backLevel {
			backLevel = lv
		}
	}
	return learnt, why, backLevel
}

// AnalyzeUnsolvable walks the implication graph from a level-1 conflict,
// collecting every contributing rule as a proof prefix. It prefers
// disabling the latest weak rule in the proof (silently, producing no
// problem); failing that, it records the non-RPM rules in the proof as a
// new problem. It returns false when the pool is hopeless (no weak rule
// to disable and disabling isn't permitted).
func (s *Solver) AnalyzeUnsolvable(conflict rules.Idx, disableRules bool) bool {
	seen := map[rules.Idx]bool{conflict: true}
	queue := []rules.Idx{conflict}
	var proof []rules.Idx
	var latestWeak rules.Idx

	for i := 0; i < len(queue); i++ {
		idx := queue[i]
		proof = append(proof, idx)
		r := s.Rules.Rule(idx)
		if r.Weak && idx > latestWeak {
			latestWeak = idx
		}
		for _, lit := range r.Literals {
			v := lit.Solvable()
			why := s.reasonFor(v)
			if why == 0 || seen[rules.Idx(absInt(why))] {
				continue
			}
			seen[rules.Idx(absInt(why))] = true
			queue = append(queue, rules.Idx(absInt(why)))
		}
	}

	if latestWeak != 0 {
		s.Rules.Disable(latestWeak)
		return true
	}

	var frontier []rules.Idx
	for _, idx := range proof {
		if s.Rules.ClassOf(idx) != rules.RPM {
			frontier = append(frontier, idx)
		}
	}
	if len(frontier) == 0 {
		frontier = proof
	}
	s.recordProblem(frontier)

	if disableRules {
		for _, idx := range frontier {
			s.Rules.Disable(idx)
		}
		return true
	}
	return false
}

func (s *Solver) reasonFor(v pool.SolvableId) int {
	for i := len(s.decisionq) - 1; i >= 0; i-- {
		if s.decisionq[i].Solvable() == v {
			return s.decisionWhy[i]
		}
	}
	return 0
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
