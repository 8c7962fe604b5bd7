package store

import (
	"os"

	"github.com/pkg/errors"
	shutil "github.com/termie/go-shutil"
)

// StageIntoCache copies a staged solvable tree (e.g. a VCS checkout or a
// freshly unpacked directory the caller obtained out of band) into the
// repo cache atomically, grounded on vcs_source.go's use of
// shutil.CopyTree when moving a checkout into its final cache location:
// ignoring VCS metadata directories so they never pollute the solvable
// set store.Load later walks.
func StageIntoCache(from, to string) error {
	cfg := &shutil.CopyTreeOptions{
		Symlinks:     true,
		CopyFunction: shutil.Copy,
		Ignore: func(src string, contents []os.FileInfo) (ignore []string) {
			for _, fi := range contents {
				if !fi.IsDir() {
					continue
				}
				switch fi.Name() {
				case ".git", ".hg", ".bzr", ".svn":
					ignore = append(ignore, fi.Name())
				}
			}
			return
		},
	}
	if err := shutil.CopyTree(from, to, cfg); err != nil {
		return errors.Wrapf(err, "store: staging %s into %s", from, to)
	}
	return nil
}
