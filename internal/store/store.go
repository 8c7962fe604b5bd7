// Package store is the on-disk package-repository reader spec.md §1
// explicitly places outside the solver core's scope, but that a driving
// CLI still needs to turn a directory of solvable manifests into a
// pool.Pool before calling into the core.
//
// It owns every remaining domain concern the core packages have no use
// for: directory walking, cache-directory locking, atomic tree copies,
// VCS snapshot resolution, context conjunction for concurrent loads,
// and a small sortable-key cache file.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/pool"
)

// Manifest is the per-solvable on-disk description store reads, encoded
// as TOML via pelletier/go-toml.
type Manifest struct {
	Name        string   `toml:"name"`
	Evr         string   `toml:"evr"`
	Arch        string   `toml:"arch"`
	Vendor      string   `toml:"vendor"`
	Requires    []string `toml:"requires"`
	Provides    []string `toml:"provides"`
	Conflicts   []string `toml:"conflicts"`
	Obsoletes   []string `toml:"obsoletes"`
	Recommends  []string `toml:"recommends"`
	Suggests    []string `toml:"suggests"`
	Supplements []string `toml:"supplements"`
	Enhances    []string `toml:"enhances"`
}

// manifestName is the fixed filename store.Load looks for inside every
// candidate solvable directory.
const manifestName = "solvable.toml"

// Load walks dir collecting every manifestName file it finds (via
// godirwalk, for fast repository tree walks) and interns each into repo
// as a new solvable.
func Load(p *pool.IdSpace, repo pool.RepoId, dir string) error {
	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() || filepath.Base(osPathname) != manifestName {
				return nil
			}
			m, err := readManifest(osPathname)
			if err != nil {
				return errors.Wrapf(err, "store: reading %s", osPathname)
			}
			addSolvable(p, repo, m)
			return nil
		},
	})
}

func readManifest(path string) (Manifest, error) {
	var m Manifest
	tree, err := toml.LoadFile(path)
	if err != nil {
		return m, err
	}
	if err := tree.Unmarshal(&m); err != nil {
		return m, err
	}
	if m.Name == "" {
		return m, fmt.Errorf("missing name field")
	}
	return m, nil
}

// addSolvable interns m's fields into p and appends the resulting
// pool.Solvable to repo.
func addSolvable(p *pool.IdSpace, repo pool.RepoId, m Manifest) pool.SolvableId {
	sv := pool.Solvable{
		Name:   p.Intern(m.Name),
		Evr:    p.Intern(m.Evr),
		Arch:   p.Intern(m.Arch),
		Vendor: p.Intern(m.Vendor),
		Repo:   repo,
	}
	sv.Requires = internDeps(p, m.Requires)
	sv.Provides = internDeps(p, m.Provides)
	sv.Conflicts = internDeps(p, m.Conflicts)
	sv.Obsoletes = internDeps(p, m.Obsoletes)
	sv.Recommends = internDeps(p, m.Recommends)
	sv.Suggests = internDeps(p, m.Suggests)
	sv.Supplements = internDeps(p, m.Supplements)
	sv.Enhances = internDeps(p, m.Enhances)
	return p.AddSolvable(sv)
}

func internDeps(p *pool.IdSpace, deps []string) []pool.Id {
	if len(deps) == 0 {
		return nil
	}
	out := make([]pool.Id, len(deps))
	for i, d := range deps {
		out[i] = p.Intern(d)
	}
	return out
}
