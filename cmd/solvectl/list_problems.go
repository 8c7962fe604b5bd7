package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/problems"
	"github.com/solvectl/solvectl/internal/rules"
	"github.com/solvectl/solvectl/internal/selection"
	"github.com/solvectl/solvectl/internal/solver"
	"github.com/solvectl/solvectl/internal/store"
)

// listProblemsCommand solves a job like solveCommand but, instead of a
// transaction, always prints every problem's exemplar rule
// (findproblemrule) and the full deduplicated proof
// (findallproblemrules), per spec.md §4.4 — grounded on libsolv's
// solver_alternatives-style enumeration of every open branch too.
type listProblemsCommand struct {
	installedDir string
}

func (cmd *listProblemsCommand) Name() string { return "list-problems" }
func (cmd *listProblemsCommand) Args() string { return "<repo-dir> <verb> <pattern>" }
func (cmd *listProblemsCommand) ShortHelp() string {
	return "Solve a job and print its problems' exemplar/proof rules"
}
func (cmd *listProblemsCommand) LongHelp() string {
	return "list-problems runs the same solve the solve command does, but always\n" +
		"prints every problem's findproblemrule exemplar and full proof, plus\n" +
		"any still-open branches left at the end of the run."
}
func (cmd *listProblemsCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.installedDir, "installed", "", "directory of already-installed solvable.toml files")
}

func (cmd *listProblemsCommand) Run(args []string) error {
	if len(args) < 3 {
		return errors.New("list-problems: expected <repo-dir> <verb> <pattern>")
	}
	repoDir, verb, pattern := args[0], args[1], args[2]

	p := pool.New()
	p.SetEvrComparator(evr.Compare)
	repo := p.AddRepo("main", 0)
	if err := store.Load(p, repo, repoDir); err != nil {
		return errors.Wrap(err, "list-problems: loading repo")
	}
	if cmd.installedDir != "" {
		installedRepo := p.AddRepo("@installed", 0)
		p.SetInstalled(installedRepo)
		if err := store.Load(p, installedRepo, cmd.installedDir); err != nil {
			return errors.Wrap(err, "list-problems: loading installed set")
		}
	}
	p.CreateWhatProvides()

	how, err := parseVerb(verb)
	if err != nil {
		return err
	}
	jobs := selection.Select(p, pattern, selection.Name|selection.Provides|selection.Glob|selection.Rel, how)
	if len(jobs) == 0 {
		return fmt.Errorf("list-problems: pattern %q matched nothing", pattern)
	}

	sv := solver.New(p, flags.Default())
	result, err := sv.Solve(jobs)
	if err != nil {
		return errors.Wrap(err, "list-problems: running solver")
	}
	if result.OK {
		fmt.Println("no problems")
		return nil
	}

	ruleStore := sv.StoreForDebug()
	for _, prob := range result.Problems {
		exemplar := problems.FindProblemRule(ruleStore, prob.Rules)
		all := problems.FindAllProblemRules(prob.Rules)
		fmt.Printf("problem %d: exemplar=%s\n", prob.Id, ruleString(ruleStore, exemplar))
		for _, idx := range all {
			fmt.Printf("  rule %s\n", ruleString(ruleStore, idx))
		}
	}

	if alts := sv.Alternatives(); len(alts) > 0 {
		fmt.Println("open branches:")
		for _, b := range alts {
			fmt.Printf("  level %d, opened by rule %s, %d candidate(s) untaken\n",
				b.Level, ruleString(ruleStore, b.Rule), len(b.Candidates))
		}
	}
	return nil
}

func ruleString(store *rules.Store, idx rules.Idx) string {
	return store.Rule(idx).String()
}
