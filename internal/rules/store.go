package rules

import (
	"fmt"

	"github.com/solvectl/solvectl/internal/pool"
)

// Idx identifies a rule by its position in a Store, replacing libsolv's
// pointer-arithmetic identity with a plain index, per spec.md's design
// notes ("Rule index as identity").
type Idx int32

// NoRule is never a valid rule index; index 0 of a Store is left unused
// so NoRule can double as a "not found" sentinel.
const NoRule Idx = 0

// Store is the append-only array of rules spec.md §3 describes, with
// rule classes occupying disjoint, contiguous ranges in the order they
// were compiled: rpm, feature, update, job, infarch, dup, best, choice,
// then learnt rules, which alone may later be shrunk between solves.
type Store struct {
	rules []Rule // index 0 unused

	rpmEnd     Idx
	featureEnd Idx
	updateEnd  Idx
	jobEnd     Idx
	infarchEnd Idx
	dupEnd     Idx
	bestEnd    Idx
	choiceEnd  Idx
	learntFrom Idx
}

// New returns an empty Store.
func New() *Store {
	return &Store{rules: []Rule{{}}}
}

// Len returns the number of allocated rules, rule 0 excluded.
func (s *Store) Len() int { return len(s.rules) - 1 }

// Rule returns the rule at idx.
func (s *Store) Rule(idx Idx) *Rule { return &s.rules[idx] }

// add appends a rule, enabled by default, and returns its index. Callers
// must add rules in class order (RPM, Feature, Update, JobClass, InfArch,
// Dup, Best, Choice, then Learnt) to preserve the range-partition
// invariant; EndClass must be called once each class finishes.
func (s *Store) add(r Rule) Idx {
	r.Enabled = true
	idx := Idx(len(s.rules))
	s.rules = append(s.rules, r)
	return idx
}

// AddUnit appends a unit assertion ¬p or p with the given class/reason.
func (s *Store) AddUnit(lit pool.Lit, class Class, reason Reason) Idx {
	return s.add(Rule{Literals: []pool.Lit{lit}, Class: class, Reason: reason})
}

// AddClause appends an n-ary (or binary) rule.
func (s *Store) AddClause(class Class, reason Reason, lits ...pool.Lit) Idx {
	cp := append([]pool.Lit(nil), lits...)
	return s.add(Rule{Literals: cp, Class: class, Reason: reason})
}

// AddJob appends a job rule tagged with its originating queue index.
func (s *Store) AddJob(jobIdx int, lits ...pool.Lit) Idx {
	cp := append([]pool.Lit(nil), lits...)
	return s.add(Rule{Literals: cp, Class: JobClass, JobIndex: jobIdx})
}

// AddWeak appends a weak rule (choice and best rules): one whose disabling under conflict never produces a problem.
func (s *Store) AddWeak(class Class, lits ...pool.Lit) Idx {
	cp := append([]pool.Lit(nil), lits...)
	return s.add(Rule{Literals: cp, Class: class, Weak: true})
}

// AddLearnt appends a clause discovered by conflict analysis, recording
// the rules that entailed it.
func (s *Store) AddLearnt(why []int, lits ...pool.Lit) Idx {
	cp := append([]pool.Lit(nil), lits...)
	return s.add(Rule{Literals: cp, Class: Learnt, Why: why})
}

// EndClass records the current length as the end of the given class's
// range. Classes must be closed off in construction order.
func (s *Store) EndClass(c Class) {
	end := Idx(len(s.rules))
	switch c {
	case RPM:
		s.rpmEnd = end
	case Feature:
		s.featureEnd = end
	case Update:
		s.updateEnd = end
	case JobClass:
		s.jobEnd = end
	case InfArch:
		s.infarchEnd = end
	case Dup:
		s.dupEnd = end
	case Best:
		s.bestEnd = end
	case Choice:
		s.choiceEnd = end
		s.learntFrom = end
	}
}

// ClassOf classifies a rule purely by its recorded Class field. Kept
// distinct from range checks so callers never need to reimplement the
// range-membership arithmetic spec.md's design notes ask to retire.
func (s *Store) ClassOf(idx Idx) Class { return s.rules[idx].Class }

// Range returns [start, end) for a class, for callers (e.g. the job-rule
// resolver) that must walk exactly one class in order.
func (s *Store) Range(c Class) (start, end Idx) {
	switch c {
	case RPM:
		return 1, s.rpmEnd
	case Feature:
		return s.rpmEnd, s.featureEnd
	case Update:
		return s.featureEnd, s.updateEnd
	case JobClass:
		return s.updateEnd, s.jobEnd
	case InfArch:
		return s.jobEnd, s.infarchEnd
	case Dup:
		return s.infarchEnd, s.dupEnd
	case Best:
		return s.dupEnd, s.bestEnd
	case Choice:
		return s.bestEnd, s.choiceEnd
	case Learnt:
		return s.learntFrom, Idx(len(s.rules))
	}
	return 0, 0
}

// Shrink truncates learnt rules back to n, used between solves to drop
// accumulated learnt clauses while keeping the rest of the store intact.
func (s *Store) Shrink(n int) {
	target := int(s.learntFrom) + n
	if target < len(s.rules) {
		s.rules = s.rules[:target]
	}
}

// Disable marks a rule inactive: it participates in no propagation, but
// stays in the store (spec.md §3 invariant 4). Disabling a rule never
// removes it from any watch chain; the sat package's watch lists are
// expected to skip disabled rules when walked.
func (s *Store) Disable(idx Idx) { s.rules[idx].Enabled = false }

// Enable restores a previously-disabled rule.
func (s *Store) Enable(idx Idx) { s.rules[idx].Enabled = true }

func (s *Store) String() string {
	return fmt.Sprintf("Store{%d rules: rpm<%d feature<%d update<%d job<%d infarch<%d dup<%d best<%d choice<%d learnt...}",
		s.Len(), s.rpmEnd, s.featureEnd, s.updateEnd, s.jobEnd, s.infarchEnd, s.dupEnd, s.bestEnd, s.choiceEnd)
}
