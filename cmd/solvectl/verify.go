package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/solver"
	"github.com/solvectl/solvectl/internal/store"
)

// verifyCommand runs spec.md §6's SOLVER_VERIFY_SYSTEM job: check that
// every installed package's requires/conflicts still hold, reporting
// problems without proposing any install/erase.
type verifyCommand struct{}

func (cmd *verifyCommand) Name() string      { return "verify" }
func (cmd *verifyCommand) Args() string      { return "<installed-dir>" }
func (cmd *verifyCommand) ShortHelp() string { return "Check the installed set for broken dependencies" }
func (cmd *verifyCommand) LongHelp() string {
	return "verify loads <installed-dir> as both the repo and the installed set,\n" +
		"runs a SOLVER_VERIFY_SYSTEM job, and reports any problems found."
}
func (cmd *verifyCommand) Register(fs *flag.FlagSet) {}

func (cmd *verifyCommand) Run(args []string) error {
	if len(args) < 1 {
		return errors.New("verify: expected <installed-dir>")
	}

	p := pool.New()
	p.SetEvrComparator(evr.Compare)
	repo := p.AddRepo("@installed", 0)
	p.SetInstalled(repo)
	if err := store.Load(p, repo, args[0]); err != nil {
		return errors.Wrap(err, "verify: loading installed set")
	}
	p.CreateWhatProvides()

	sv := solver.New(p, flags.Default())
	jobs := job.Queue{{How: job.Verify, What: job.WhatAll}}

	result, err := sv.Solve(jobs)
	if err != nil {
		return errors.Wrap(err, "verify: running solver")
	}
	if result.OK {
		fmt.Println("verify: system is consistent")
		return nil
	}
	printProblems(sv, result.Problems)
	return fmt.Errorf("verify: %d problem(s)", len(result.Problems))
}
