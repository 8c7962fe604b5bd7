package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/solver"
	"github.com/solvectl/solvectl/internal/testcase"
)

// testcaseCommand runs a `.t` testcase file end to end: build a pool
// from its repo/solvable records, compile its job lines, solve, and
// print the transaction or problems, per spec.md §6's text wire format.
type testcaseCommand struct{}

func (cmd *testcaseCommand) Name() string      { return "testcase" }
func (cmd *testcaseCommand) Args() string      { return "<file.t>" }
func (cmd *testcaseCommand) ShortHelp() string { return "Run a .t testcase file end to end" }
func (cmd *testcaseCommand) LongHelp() string {
	return "testcase parses a spec.md §6 wire-format file, builds the described\n" +
		"pool and job queue, runs the solver, and prints the result."
}
func (cmd *testcaseCommand) Register(fs *flag.FlagSet) {}

func (cmd *testcaseCommand) Run(args []string) error {
	if len(args) < 1 {
		return errors.New("testcase: expected <file.t>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "testcase: opening file")
	}
	defer f.Close()

	st, err := testcase.Read(f)
	if err != nil {
		return errors.Wrap(err, "testcase: parsing file")
	}

	p := pool.New()
	p.SetEvrComparator(evr.Compare)

	repoIds := make(map[string]pool.RepoId, len(st.Repos))
	for _, r := range st.Repos {
		repoIds[r.Name] = p.AddRepo(r.Name, r.Priority)
	}
	if st.System.InstalledRepo != "" {
		if id, ok := repoIds[st.System.InstalledRepo]; ok {
			p.SetInstalled(id)
		}
	}
	if st.System.Arch != "" {
		p.SetArch(st.System.Arch)
	}

	for _, sv := range st.Solvables {
		repo := repoIds[sv.Repo]
		addTestcaseSolvable(p, repo, sv)
	}
	p.CreateWhatProvides()

	jobs, err := compileJobs(p, st.Jobs)
	if err != nil {
		return errors.Wrap(err, "testcase: compiling jobs")
	}

	sv := solver.New(p, flags.Default())
	result, err := sv.Solve(jobs)
	if err != nil {
		return errors.Wrap(err, "testcase: running solver")
	}
	if !result.OK {
		printProblems(sv, result.Problems)
		return nil
	}
	for _, op := range result.Transaction.Ops {
		verb := "install"
		if op.Erase {
			verb = "erase"
		}
		fmt.Printf("%s %s\n", verb, p.Str(p.Solvable(op.Solvable).Name))
	}
	return nil
}

func addTestcaseSolvable(p *pool.IdSpace, repo pool.RepoId, sv testcase.SolvableRecord) {
	rec := pool.Solvable{
		Name:   p.Intern(sv.Name),
		Evr:    p.Intern(sv.Evr),
		Arch:   p.Intern(sv.Arch),
		Vendor: p.Intern(sv.Vendor),
		Repo:   repo,
	}
	rec.Requires = internAll(p, sv.Req)
	rec.Provides = internAll(p, sv.Prv)
	rec.Conflicts = internAll(p, sv.Con)
	rec.Obsoletes = internAll(p, sv.Obs)
	rec.Recommends = internAll(p, sv.Rec)
	rec.Suggests = internAll(p, sv.Sug)
	rec.Supplements = internAll(p, sv.Sup)
	rec.Enhances = internAll(p, sv.Enh)
	p.AddSolvable(rec)
}

func internAll(p *pool.IdSpace, ss []string) []pool.Id {
	if len(ss) == 0 {
		return nil
	}
	out := make([]pool.Id, len(ss))
	for i, s := range ss {
		out[i] = p.Intern(s)
	}
	return out
}

func compileJobs(p *pool.IdSpace, lines []testcase.JobLine) (job.Queue, error) {
	var q job.Queue
	for _, jl := range lines {
		how, err := parseVerb(jl.Name)
		if err != nil {
			return nil, err
		}
		id, ok := p.Lookup(jl.What)
		if !ok {
			id = p.Intern(jl.What)
		}
		switch jl.Selector {
		case "name":
			q = append(q, job.Job{How: how, What: job.WhatName, Id: id})
		case "provides":
			q = append(q, job.Job{How: how, What: job.WhatProvides, Id: id})
		default:
			q = append(q, job.Job{How: how, What: job.WhatName, Id: id})
		}
	}
	return q, nil
}
