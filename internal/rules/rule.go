// Package rules compiles package metadata and the job queue into CNF
// clauses over solvable literals, tagged with the rule classes spec.md
// §3-§4.1 describes. It does not solve anything; it only emits the clause
// set the sat package will search.
package rules

import "github.com/solvectl/solvectl/internal/pool"

// Class classifies a rule by how it was derived. Ranges of rule indices
// belonging to each class partition the store (spec.md §3 invariant 1);
// Class itself is the sum-type re-architecture spec.md's design notes
// call for, so callers match on Class instead of comparing a rule index
// against a pair of range boundaries.
type Class uint8

const (
	RPM Class = iota
	Feature
	Update
	JobClass
	InfArch
	Dup
	Best
	Choice
	Learnt
)

func (c Class) String() string {
	switch c {
	case RPM:
		return "rpm"
	case Feature:
		return "feature"
	case Update:
		return "update"
	case JobClass:
		return "job"
	case InfArch:
		return "infarch"
	case Dup:
		return "dup"
	case Best:
		return "best"
	case Choice:
		return "choice"
	case Learnt:
		return "learnt"
	}
	return "unknown"
}

// Reason further tags *why* an RPM-class rule was emitted (spec.md §7's
// "RPM_NOT_INSTALLABLE" / "RPM_NOTHING_PROVIDES_DEP" / … vocabulary),
// used by the problem/solution layer's findproblemrule preference order.
type Reason uint8

const (
	ReasonNone Reason = iota
	NotInstallable
	NothingProvidesDep
	PackageRequires
	PackageConflicts
	PackageObsoletes
	SameName
	PackageSameName
)

// Rule is one CNF clause: the disjunction of Literals. An empty
// Literals slice is never valid; a single-literal Rule is a unit
// assertion.
type Rule struct {
	Literals []pool.Lit
	Class    Class
	Reason   Reason
	Enabled  bool

	// Weak marks a rule (every choice and best rule) whose disabling under conflict is silent and produces
	// no user-visible problem (spec.md's Weak rule definition).
	Weak bool

	// JobIndex is set for JobClass rules: the index into the job queue
	// this rule was compiled from (spec.md's ruletojob).
	JobIndex int

	// Solvable is set for Feature/Update/Dup/InfArch rules and for Best
	// rules built from the best-update map: the solvable the rule concerns
	// (the installed one, except for InfArch, where it is the solvable
	// excluded for its architecture).
	Solvable pool.SolvableId

	// Why holds, for Learnt rules, the indices of the rules whose
	// resolution produced this clause (spec.md's learnt_why/learnt_pool).
	Why []int
}

// Unit reports whether the rule asserts a single literal outright.
func (r Rule) Unit() bool { return len(r.Literals) == 1 }

func (r Rule) String() string {
	if len(r.Literals) == 0 {
		return "<empty rule>"
	}
	s := r.Literals[0].String()
	for _, l := range r.Literals[1:] {
		s += " | " + l.String()
	}
	return s
}
