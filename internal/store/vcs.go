package store

import (
	"strings"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"
)

// ResolveVCSSnapshot resolves a SOLVABLE_REPO job target naming a remote
// VCS ref (e.g. a git URL with an optional "#ref" suffix) into a
// concrete, checked-out snapshot at local, returning the resolved
// version string. Wraps vcs.GitRepo/vcs.SvnRepo/vcs.BzrRepo/vcs.HgRepo.
func ResolveVCSSnapshot(remote, local string) (version string, err error) {
	url, ref := splitRef(remote)

	repo, err := vcs.NewRepo(url, local)
	if err != nil {
		return "", errors.Wrapf(err, "store: resolving repo type for %s", url)
	}

	if repo.CheckLocal() {
		if err := repo.Update(); err != nil {
			return "", errors.Wrapf(err, "store: updating %s", local)
		}
	} else {
		if err := repo.Get(); err != nil {
			return "", errors.Wrapf(err, "store: cloning %s", url)
		}
	}

	if ref != "" {
		if err := repo.UpdateVersion(ref); err != nil {
			return "", errors.Wrapf(err, "store: checking out %s@%s", url, ref)
		}
	}

	v, err := repo.Version()
	if err != nil {
		return "", errors.Wrapf(err, "store: reading resolved version of %s", local)
	}
	return v, nil
}

func splitRef(remote string) (url, ref string) {
	if i := strings.LastIndex(remote, "#"); i >= 0 {
		return remote[:i], remote[i+1:]
	}
	return remote, ""
}
