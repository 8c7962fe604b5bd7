package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/problems"
	"github.com/solvectl/solvectl/internal/selection"
	"github.com/solvectl/solvectl/internal/solver"
	"github.com/solvectl/solvectl/internal/store"
)

// repoFlag collects repeated -repo name:priority:dir flags into a
// store.Source list, the flag.Value pattern Go's own flag package docs
// recommend for repeatable string flags.
type repoFlag []store.Source

func (r *repoFlag) String() string { return fmt.Sprintf("%v", []store.Source(*r)) }

func (r *repoFlag) Set(v string) error {
	parts := strings.SplitN(v, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("solve: -repo wants name:priority:dir, got %q", v)
	}
	prio, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("solve: -repo priority %q: %v", parts[1], err)
	}
	*r = append(*r, store.Source{Name: parts[0], Priority: prio, Dir: parts[2]})
	return nil
}

// vcsRepoFlag collects repeated -vcs-repo name:priority:remote:cachedir
// flags; each is resolved to a concrete checkout under its cache
// directory before the repo set is loaded.
type vcsRepoSpec struct {
	name, remote, cacheDir string
	priority               int
}

type vcsRepoFlag []vcsRepoSpec

func (r *vcsRepoFlag) String() string { return fmt.Sprintf("%v", []vcsRepoSpec(*r)) }

func (r *vcsRepoFlag) Set(v string) error {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) != 4 {
		return fmt.Errorf("solve: -vcs-repo wants name:priority:remote:cachedir, got %q", v)
	}
	prio, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("solve: -vcs-repo priority %q: %v", parts[1], err)
	}
	*r = append(*r, vcsRepoSpec{name: parts[0], priority: prio, remote: parts[2], cacheDir: parts[3]})
	return nil
}

type solveCommand struct {
	installedDir string
	flagFile     string
	timeout      time.Duration
	extraRepos   repoFlag
	vcsRepos     vcsRepoFlag
}

func (cmd *solveCommand) Name() string      { return "solve" }
func (cmd *solveCommand) Args() string      { return "<repo-dir> <install|erase|update|distupgrade> <pattern>" }
func (cmd *solveCommand) ShortHelp() string { return "Resolve a job against a repo directory" }
func (cmd *solveCommand) LongHelp() string {
	return "solve reads every solvable.toml under <repo-dir>, compiles a single job\n" +
		"from the verb and pattern, runs the CDCL engine, and prints either the\n" +
		"resulting transaction or the enumerated problems. Repeatable -repo and\n" +
		"-vcs-repo flags add further repos, loaded concurrently alongside the\n" +
		"primary directory."
}

func (cmd *solveCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.installedDir, "installed", "", "directory of already-installed solvable.toml files")
	fs.StringVar(&cmd.flagFile, "flags", "", "TOML file of solver flags (see §6)")
	fs.DurationVar(&cmd.timeout, "timeout", 30*time.Second, "per-repo load timeout")
	fs.Var(&cmd.extraRepos, "repo", "extra repo dir as name:priority:dir (repeatable)")
	fs.Var(&cmd.vcsRepos, "vcs-repo", "extra VCS repo as name:priority:remote:cachedir (repeatable)")
}

func (cmd *solveCommand) Run(args []string) error {
	if len(args) < 3 {
		return errors.New("solve: expected <repo-dir> <verb> <pattern>")
	}
	repoDir, verb, pattern := args[0], args[1], args[2]

	p := pool.New()
	p.SetEvrComparator(evr.Compare)

	sources := []store.Source{{Name: "main", Priority: 0, Dir: repoDir}}
	sources = append(sources, cmd.extraRepos...)

	for _, vr := range cmd.vcsRepos {
		dir, err := cmd.resolveVCSRepo(vr)
		if err != nil {
			return err
		}
		sources = append(sources, store.Source{Name: vr.name, Priority: vr.priority, Dir: dir})
	}

	if err := store.LoadAll(context.Background(), p, sources, cmd.timeout); err != nil {
		return errors.Wrap(err, "solve: loading repos")
	}

	if cmd.installedDir != "" {
		installedRepo := p.AddRepo("@installed", 0)
		p.SetInstalled(installedRepo)
		if err := store.Load(p, installedRepo, cmd.installedDir); err != nil {
			return errors.Wrap(err, "solve: loading installed set")
		}
	}
	p.CreateWhatProvides()

	f := flags.Default()
	if cmd.flagFile != "" {
		loaded, err := loadFlags(cmd.flagFile)
		if err != nil {
			return errors.Wrap(err, "solve: loading flags")
		}
		f = loaded
	}

	how, err := parseVerb(verb)
	if err != nil {
		return err
	}
	jobs := selection.Select(p, pattern, selection.Name|selection.Provides|selection.Glob|selection.Rel, how)
	if len(jobs) == 0 {
		return fmt.Errorf("solve: pattern %q matched nothing", pattern)
	}

	sv := solver.New(p, f)
	sv.Trace.Enabled = *verbose

	result, err := sv.Solve(jobs)
	if err != nil {
		return errors.Wrap(err, "solve: running solver")
	}
	if !result.OK {
		printProblems(sv, result.Problems)
		return fmt.Errorf("solve: %d problem(s)", len(result.Problems))
	}

	for _, op := range result.Transaction.Ops {
		if op.Erase {
			fmt.Printf("erase %s\n", p.Str(p.Solvable(op.Solvable).Name))
		} else {
			fmt.Printf("install %s\n", p.Str(p.Solvable(op.Solvable).Name))
		}
	}
	for s := range result.Transaction.CleanDeps {
		fmt.Printf("cleandeps erase %s\n", p.Str(p.Solvable(s).Name))
	}
	return nil
}

// resolveVCSRepo locks vr's cache directory, resolves its remote into a
// staging checkout, and stages that checkout into the cache before
// releasing the lock, so two solvectl invocations racing on the same
// cache directory never observe a half-written tree.
func (cmd *solveCommand) resolveVCSRepo(vr vcsRepoSpec) (string, error) {
	lock, err := store.LockCache(vr.cacheDir)
	if err != nil {
		return "", errors.Wrapf(err, "solve: locking vcs cache for %s", vr.name)
	}
	defer lock.Unlock()

	staging := vr.cacheDir + ".staging"
	if _, err := store.ResolveVCSSnapshot(vr.remote, staging); err != nil {
		return "", errors.Wrapf(err, "solve: resolving vcs repo %s", vr.name)
	}
	if err := store.StageIntoCache(staging, vr.cacheDir); err != nil {
		return "", errors.Wrapf(err, "solve: staging vcs repo %s", vr.name)
	}
	return vr.cacheDir, nil
}

func parseVerb(verb string) (job.How, error) {
	switch verb {
	case "install":
		return job.Install, nil
	case "erase":
		return job.Erase, nil
	case "update":
		return job.Update, nil
	case "distupgrade":
		return job.Distupgrade, nil
	case "verify":
		return job.Verify, nil
	case "lock":
		return job.Lock, nil
	}
	return 0, fmt.Errorf("solve: unknown verb %q", verb)
}

func printProblems(sv *solver.Solver, probs []problems.Problem) {
	for _, prob := range probs {
		fmt.Printf("problem %d:\n", prob.Id)
		if *verbose {
			fmt.Printf("  %s\n", problems.Describe(sv.StoreForDebug(), prob))
		}
		for _, sol := range sv.Solutions(prob) {
			var parts []string
			for _, a := range sol.Actions {
				parts = append(parts, fmt.Sprintf("%v", a.Kind))
			}
			fmt.Printf("  solution: %v\n", parts)
		}
	}
}
