package problems

import (
	"bytes"
	"fmt"

	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
)

// traceError is implemented by every failure type below; Trace's verbose
// output prefers traceString over Error when a recorded cause satisfies
// it, distinguishing a terse Error() from a fuller traceString() for
// -v output.
type traceError interface {
	traceString() string
}

// unsatisfiedRequiresFailure describes an RPM_PACKAGE_REQUIRES rule with
// no remaining open literal: goal requires dep, and nothing in the pool
// provides it (or everything that did has already been rejected).
type unsatisfiedRequiresFailure struct {
	goal    pool.SolvableId
	dep     pool.Id
	rejects []pool.SolvableId
}

func (e *unsatisfiedRequiresFailure) Error() string {
	if len(e.rejects) == 0 {
		return fmt.Sprintf("nothing provides %s, required by %s", depString(e.dep), svString(e.goal))
	}
	return fmt.Sprintf("%s requires %s, but every candidate providing it was already rejected", svString(e.goal), depString(e.dep))
}

func (e *unsatisfiedRequiresFailure) traceString() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "requires %s unsatisfied for %s:\n", depString(e.dep), svString(e.goal))
	for _, r := range e.rejects {
		fmt.Fprintf(&buf, "  %s rejected\n", svString(r))
	}
	return buf.String()
}

// conflictFailure describes an RPM_PACKAGE_CONFLICTS rule: goal and
// against cannot both be installed.
type conflictFailure struct {
	goal    pool.SolvableId
	against pool.SolvableId
}

func (e *conflictFailure) Error() string {
	return fmt.Sprintf("%s conflicts with %s", svString(e.goal), svString(e.against))
}

func (e *conflictFailure) traceString() string {
	return fmt.Sprintf("conflict: %s <-> %s", svString(e.goal), svString(e.against))
}

// infarchRejectedFailure describes an InfArch rule rejecting candidate
// in favor of better, an equal-or-better-architecture package of the
// same name already under consideration.
type infarchRejectedFailure struct {
	candidate pool.SolvableId
	better    pool.SolvableId
}

func (e *infarchRejectedFailure) Error() string {
	return fmt.Sprintf("%s has an inferior architecture to %s", svString(e.candidate), svString(e.better))
}

func (e *infarchRejectedFailure) traceString() string {
	return fmt.Sprintf("infarch: %s loses to %s", svString(e.candidate), svString(e.better))
}

// dupRejectedFailure describes a Dup rule rejecting installed for not
// being replaceable by anything in the distupgrade target repos.
type dupRejectedFailure struct {
	installed pool.SolvableId
}

func (e *dupRejectedFailure) Error() string {
	return fmt.Sprintf("%s has no replacement in the distupgrade target", svString(e.installed))
}

func (e *dupRejectedFailure) traceString() string {
	return fmt.Sprintf("dup: %s stranded", svString(e.installed))
}

// illegalChangeFailure describes a policy.IllegalChange rejection: from
// cannot be replaced by to under the active flags (name/arch/vendor
// change not permitted).
type illegalChangeFailure struct {
	from, to pool.SolvableId
	reason   string
}

func (e *illegalChangeFailure) Error() string {
	return fmt.Sprintf("replacing %s with %s is not allowed: %s", svString(e.from), svString(e.to), e.reason)
}

func (e *illegalChangeFailure) traceString() string {
	return fmt.Sprintf("illegal change %s -> %s (%s)", svString(e.from), svString(e.to), e.reason)
}

func svString(s pool.SolvableId) string {
	return fmt.Sprintf("solvable#%d", s)
}

func depString(d pool.Id) string {
	return fmt.Sprintf("dep#%d", d)
}

// Describe renders problem's exemplar rule as one of the named failure
// types above, for verbose (-v) CLI output; plain listings can stick to
// FindProblemRule plus the rule's own String().
func Describe(store *rules.Store, problem Problem) string {
	exemplar := FindProblemRule(store, problem.Rules)
	if exemplar == rules.NoRule {
		return "no exemplar rule"
	}
	err := failureFor(store, exemplar)
	if te, ok := err.(traceError); ok {
		return te.traceString()
	}
	return err.Error()
}

// failureFor builds the named traceError describing why idx's rule is
// unsatisfied, for use in a problem's verbose (-v) rendering; callers
// that only need the terse form can call Error() directly.
func failureFor(store *rules.Store, idx rules.Idx) error {
	r := store.Rule(idx)
	switch r.Class {
	case rules.RPM:
		switch r.Reason {
		case rules.PackageRequires:
			return &unsatisfiedRequiresFailure{goal: r.Solvable}
		case rules.PackageConflicts:
			return &conflictFailure{goal: r.Solvable}
		}
	case rules.InfArch:
		return &infarchRejectedFailure{candidate: r.Solvable}
	case rules.Dup:
		return &dupRejectedFailure{installed: r.Solvable}
	}
	return fmt.Errorf("rule %d (%s) has no named failure", idx, r.Class)
}
