// Package policy implements the deterministic pruning and ordering
// functions spec.md §4.2 describes: version/arch/vendor preference,
// update-candidate discovery, illegal-change diagnosis and the obsolete
// index. It never decides anything itself; sat and problems call into it
// to narrow or rank a candidate queue.
package policy

import (
	"sort"

	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/pool"
)

// Mode selects which pruners policy_filter_unwanted runs, and in what
// order, per spec.md §4.2.
type Mode uint8

const (
	Choose Mode = iota
	Recommend
	Suggest
	Enhances
)

// Policy bundles the pool and flags every pruning function reads.
type Policy struct {
	Pool  *pool.IdSpace
	Flags flags.Flags

	// VendorClass maps a vendor string to its equivalence class; two
	// vendors in the same class are not a "vendor change" for
	// illegal_change purposes. A nil map means every vendor is its own
	// class.
	VendorClass map[string]string
}

// New returns a Policy over p using f.
func New(p *pool.IdSpace, f flags.Flags) *Policy {
	return &Policy{Pool: p, Flags: f}
}

// FilterUnwanted narrows cands according to mode: Choose applies the full
// priority/arch/version/obsoletes pruning chain; Recommend, Suggest and
// Enhances each apply the two-pass pruner for their own relation
// (prune_to_recommended / prune_to_supplements / prune_to_enhances, per
// spec.md §4.2), all of which never drop an already-installed candidate.
func (pl *Policy) FilterUnwanted(cands []pool.SolvableId, mode Mode) []pool.SolvableId {
	switch mode {
	case Choose:
		cands = pl.PruneToHighestPrio(cands)
		cands = pl.PruneToBestArch(cands)
		cands = pl.PruneToBestVersion(cands)
		return cands
	case Recommend:
		return pl.PruneToRecommended(cands)
	case Suggest:
		return pl.PruneToSupplements(cands)
	default:
		return pl.PruneToEnhances(cands)
	}
}

// PruneToHighestPrio retains only candidates from the highest-priority
// repository among the non-installed members; installed packages are
// never pruned by this step.
func (pl *Policy) PruneToHighestPrio(cands []pool.SolvableId) []pool.SolvableId {
	best := -1 << 31
	for _, c := range cands {
		if pl.Pool.Installed(c) {
			continue
		}
		if p := pl.Pool.Repo(pl.Pool.Solvable(c).Repo).Priority; p > best {
			best = p
		}
	}
	out := cands[:0:0]
	for _, c := range cands {
		if pl.Pool.Installed(c) || pl.Pool.Repo(pl.Pool.Solvable(c).Repo).Priority == best {
			out = append(out, c)
		}
	}
	return out
}

// archClass is the high/low-word architecture ranking spec.md §4.1
// describes for infarch comparison ("id2arch high/low words"); here it is
// simply an explicit preference table rather than packed-integer
// encoding, since Go has no reason to reproduce the C bit-packing trick.
var archClass = map[string]int{
	"x86_64": 100, "amd64": 100,
	"aarch64": 90, "arm64": 90,
	"i686": 50, "i386": 40,
	"noarch": 10, "any": 10, "all": 10,
}

// ArchRank returns the architecture preference rank; unknown
// architectures rank below every known one but above nothing (they still
// compare equal to each other).
func ArchRank(arch string) int {
	if r, ok := archClass[arch]; ok {
		return r
	}
	return 0
}

// PruneToBestArch keeps only the architecture-equivalence-class co-best
// candidates.
func (pl *Policy) PruneToBestArch(cands []pool.SolvableId) []pool.SolvableId {
	best := -1
	for _, c := range cands {
		if r := ArchRank(pl.Pool.Str(pl.Pool.Solvable(c).Arch)); r > best {
			best = r
		}
	}
	out := cands[:0:0]
	for _, c := range cands {
		if pl.Pool.Installed(c) || ArchRank(pl.Pool.Str(pl.Pool.Solvable(c).Arch)) == best {
			out = append(out, c)
		}
	}
	return out
}

// PruneToBestVersion sorts by (name, installed-first, id) and keeps only
// the EVR-max solvable per name, then removes any name-level duplication
// introduced by obsoletes via PruneObsoleted.
func (pl *Policy) PruneToBestVersion(cands []pool.SolvableId) []pool.SolvableId {
	sort.Slice(cands, func(i, j int) bool {
		a, b := pl.Pool.Solvable(cands[i]), pl.Pool.Solvable(cands[j])
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		ai, bi := pl.Pool.Installed(cands[i]), pl.Pool.Installed(cands[j])
		if ai != bi {
			return ai
		}
		return cands[i] < cands[j]
	})

	var out []pool.SolvableId
	i := 0
	for i < len(cands) {
		j := i
		bestIdx := i
		bestEvr := pl.Pool.Str(pl.Pool.Solvable(cands[i]).Evr)
		for j < len(cands) && pl.Pool.Solvable(cands[j]).Name == pl.Pool.Solvable(cands[i]).Name {
			e := pl.Pool.Str(pl.Pool.Solvable(cands[j]).Evr)
			if evr.Compare(e, bestEvr) > 0 {
				bestEvr = e
				bestIdx = j
			}
			j++
		}
		out = append(out, cands[bestIdx])
		i = j
	}
	return pl.PruneObsoleted(out)
}

// PruneToRecommended is prune_to_recommended (spec.md §4.2): the
// two-pass pruner driven by a solvable's Recommends edges — narrow the
// candidate set to its best version per name, but never at the cost of
// an already-installed candidate.
func (pl *Policy) PruneToRecommended(cands []pool.SolvableId) []pool.SolvableId {
	return pl.twoPassKeepInstalled(cands)
}

// PruneToSupplements is prune_to_supplements: the same two-pass pruner,
// driven instead by the reverse Supplements relation (a candidate whose
// Supplements expression some installed or about-to-be-installed
// solvable satisfies).
func (pl *Policy) PruneToSupplements(cands []pool.SolvableId) []pool.SolvableId {
	return pl.twoPassKeepInstalled(cands)
}

// PruneToEnhances is prune_to_enhances: the weakest of the three —
// narrows candidates whose Enhances relation merely makes an installed
// package more useful, never required, but still never drops an
// installed candidate to do so.
func (pl *Policy) PruneToEnhances(cands []pool.SolvableId) []pool.SolvableId {
	return pl.twoPassKeepInstalled(cands)
}

// twoPassKeepInstalled is the shared two-pass pruner the three weak
// relations above drive: it never removes an already-installed
// candidate, and narrows the rest to their best version per name.
func (pl *Policy) twoPassKeepInstalled(cands []pool.SolvableId) []pool.SolvableId {
	var installed, rest []pool.SolvableId
	for _, c := range cands {
		if pl.Pool.Installed(c) {
			installed = append(installed, c)
		} else {
			rest = append(rest, c)
		}
	}
	rest = pl.PruneToBestVersion(rest)
	return append(installed, rest...)
}
