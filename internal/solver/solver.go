// Package solver wires Pool, Rule Builder, Policy, SAT Engine and
// Problem/Solution layers into the single `solve(job)` entry point
// spec.md §2's control-flow diagram and §6's library API describe.
package solver

import (
	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/cleandeps"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/problems"
	"github.com/solvectl/solvectl/internal/rules"
	"github.com/solvectl/solvectl/internal/sat"
	"github.com/solvectl/solvectl/internal/trace"
)

// Solver is the top-level handle a caller holds for one pool: it owns
// the rule store, policy and (after Solve) the last run's sat.Solver and
// problem set, giving one orchestration point over the whole pipeline.
type Solver struct {
	Pool   *pool.IdSpace
	Flags  flags.Flags
	Policy *policy.Policy
	Trace  *trace.Tracer

	store  *rules.Store
	engine *sat.Solver

	lastProblems []problems.Problem
}

// New returns a Solver over an already-whatprovides-built Pool. Per
// spec.md §5, a Solver is single-threaded and non-reentrant; callers
// needing concurrency should construct one Solver per goroutine sharing
// the read-only Pool.
func New(p *pool.IdSpace, f flags.Flags) *Solver {
	return &Solver{
		Pool:   p,
		Flags:  f,
		Policy: policy.New(p, f),
		Trace:  &trace.Tracer{},
	}
}

// Installed describes one resulting package state after a successful
// solve: either install (Replacing != 0 on an update) or erase.
type Installed struct {
	Solvable  pool.SolvableId
	Erase     bool
	Replacing pool.SolvableId
}

// Transaction is the external result of a solvable job: the set of
// install/erase operations, plus any installed packages cleandeps
// determined are now collateral-unneeded.
type Transaction struct {
	Ops       []Installed
	CleanDeps cleandeps.Map
}

// Result is what Solve returns: either a Transaction (OK) or the
// problems blocking it.
type Result struct {
	OK          bool
	Transaction Transaction
	Problems    []problems.Problem
}

// Solve runs the full rule-compile → SAT → (problems | transaction)
// pipeline for one job queue, per spec.md §2's control-flow diagram.
func (s *Solver) Solve(jobs job.Queue) (Result, error) {
	if s.Pool == nil {
		return Result{}, errors.New("solver: nil pool")
	}

	store := rules.New()
	b := rules.NewBuilder(s.Pool, store, s.Flags)

	b.BuildRPM(jobs)
	b.BuildFeatureAndUpdate(s.Policy)
	b.BuildJob(jobs)
	if !s.Flags.NoInfArchCheck {
		b.BuildInfArch()
	}
	b.BuildDup(jobs)
	b.BuildBest(jobs, s.Policy)
	b.BuildChoice(s.Policy)

	engine := sat.New(s.Pool, store, s.Policy)
	engine.Trace = s.Trace

	result := engine.Run(s.Flags, jobs, b.DupMap(), b.DupInvolved())

	s.store = store
	s.engine = engine

	if !result.OK {
		probs := problems.Prepare(result.Problems)
		s.lastProblems = probs
		return Result{OK: false, Problems: probs}, nil
	}

	txn := s.buildTransaction(engine, jobs)
	return Result{OK: true, Transaction: txn}, nil
}

// buildTransaction reads the engine's final decisionmap and reports
// every solvable whose install state changed relative to the pool's
// installed repo, then folds in cleandeps for any CleanDeps-flagged job.
func (s *Solver) buildTransaction(engine *sat.Solver, jobs job.Queue) Transaction {
	var ops []Installed
	for _, sv := range s.Pool.AllSolvables() {
		installedNow, _, decided := engine.Decided(sv)
		wasInstalled := s.Pool.Installed(sv)
		if !decided {
			continue
		}
		switch {
		case installedNow && !wasInstalled:
			ops = append(ops, Installed{Solvable: sv})
		case !installedNow && wasInstalled:
			ops = append(ops, Installed{Solvable: sv, Erase: true})
		}
	}

	needsClean := false
	for _, j := range jobs {
		if j.CleanDeps {
			needsClean = true
			break
		}
	}
	var cd cleandeps.Map
	if needsClean {
		cd = cleandeps.Compute(s.Pool, jobs)
	}

	return Transaction{Ops: ops, CleanDeps: cd}
}

// Solutions enumerates every refined Solution for problem, per spec.md
// §4.4. The Solver must have just returned a non-OK Result from Solve.
func (s *Solver) Solutions(problem problems.Problem) []problems.Solution {
	if s.engine == nil || s.store == nil {
		return nil
	}
	return problems.Solve(s.engine, s.store, s.Flags, problem)
}

// Problems returns the problem set recorded by the most recent
// unsolvable Solve call.
func (s *Solver) Problems() []problems.Problem { return s.lastProblems }

// StoreForDebug exposes the rule store from the most recent Solve call,
// for callers (e.g. cmd/solvectl's list-problems) that need to render
// individual rules rather than go through Solutions.
func (s *Solver) StoreForDebug() *rules.Store { return s.store }

// Alternatives exposes the engine's still-open branch stack at the end
// of the most recent Solve call: every point where more than one
// candidate could legally have been decided, and which ones were left
// untaken. Grounded on libsolv's solver_alternatives enumeration
// (SPEC_FULL.md §4).
func (s *Solver) Alternatives() []sat.Branch {
	if s.engine == nil {
		return nil
	}
	return s.engine.Branches()
}
