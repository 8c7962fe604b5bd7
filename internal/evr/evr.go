// Package evr implements the epoch:version-release comparator spec.md §3
// names as an external collaborator ("evrcmp") rather than core solver
// logic. It leans on a real SemVer library instead of hand-rolling
// comparison.
package evr

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver"
)

// EVR is a parsed epoch:version-release tuple.
type EVR struct {
	Epoch   int
	Version string
	Release string
}

// Parse splits "[epoch:]version[-release]" into its parts. A missing
// epoch defaults to 0, matching rpm's convention.
func Parse(s string) EVR {
	var e EVR
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if n, err := strconv.Atoi(s[:i]); err == nil {
			e.Epoch = n
			s = s[i+1:]
		}
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		e.Version, e.Release = s[:i], s[i+1:]
	} else {
		e.Version = s
	}
	return e
}

func (e EVR) String() string {
	s := e.Version
	if e.Release != "" {
		s += "-" + e.Release
	}
	if e.Epoch != 0 {
		s = strconv.Itoa(e.Epoch) + ":" + s
	}
	return s
}

// Compare orders two raw EVR strings: negative if a < b, zero if equal,
// positive if a > b. Epoch is compared numerically first; version and
// release are each compared as loosely-coerced semver, falling back to a
// segment-wise numeric/lexicographic comparison (rpm's rpmvercmp rule)
// when a segment isn't valid semver, since real-world version strings
// routinely aren't.
func Compare(a, b string) int {
	ea, eb := Parse(a), Parse(b)
	if ea.Epoch != eb.Epoch {
		if ea.Epoch < eb.Epoch {
			return -1
		}
		return 1
	}
	if c := compareSegment(ea.Version, eb.Version); c != 0 {
		return c
	}
	return compareSegment(ea.Release, eb.Release)
}

// compareSegment compares one version or release segment. It first tries
// github.com/Masterminds/semver, which handles the common `X.Y.Z[-pre]`
// shape; segments that don't parse as semver fall back to rpmvercmp-style
// alternating numeric/alphabetic run comparison.
func compareSegment(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := semver.NewVersion(normalizeSemver(a))
	vb, errB := semver.NewVersion(normalizeSemver(b))
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return rpmvercmp(a, b)
}

// normalizeSemver pads a bare "X" or "X.Y" version out to "X.Y.Z" so that
// semver.NewVersion accepts version strings as loose as rpm's, which
// semver.NewVersion otherwise rejects.
func normalizeSemver(s string) string {
	n := strings.Count(s, ".")
	switch n {
	case 0:
		return s + ".0.0"
	case 1:
		return s + ".0"
	default:
		return s
	}
}

// rpmvercmp splits a and b into alternating digit/non-digit runs and
// compares run by run: numeric runs compare numerically, others
// lexicographically; a longer numeric run is always greater, and running
// out of runs loses to having more.
func rpmvercmp(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		if c := compareRun(ra[i], rb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	default:
		return 0
	}
}

func splitRuns(s string) []string {
	var runs []string
	i := 0
	for i < len(s) {
		j := i + 1
		digit := isDigit(s[i])
		for j < len(s) && isDigit(s[j]) == digit {
			j++
		}
		runs = append(runs, s[i:j])
		i = j
	}
	return runs
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func compareRun(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		na := strings.TrimLeft(a, "0")
		nb := strings.TrimLeft(b, "0")
		if len(na) != len(nb) {
			if len(na) < len(nb) {
				return -1
			}
			return 1
		}
		return strings.Compare(na, nb)
	}
	return strings.Compare(a, b)
}
