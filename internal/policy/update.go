package policy

import (
	"github.com/solvectl/solvectl/internal/evr"
	"github.com/solvectl/solvectl/internal/pool"
)

// Change is a bitset over the ways a replacement solvable can differ from
// the one it replaces, per spec.md §4.2's illegal_change.
type Change uint8

const (
	Downgrade Change = 1 << iota
	ArchChange
	VendorChange
	NameChange
)

// IllegalChange diagnoses, under ignoreMask, why s2 cannot silently
// replace s1: the returned bitset has a bit set for each kind of change
// present and not masked out.
func (pl *Policy) IllegalChange(s1, s2 pool.SolvableId, ignoreMask Change) Change {
	a, b := pl.Pool.Solvable(s1), pl.Pool.Solvable(s2)
	var c Change

	if a.Name != b.Name {
		c |= NameChange
	}
	if !pl.sameVendorClass(a.Vendor, b.Vendor) {
		c |= VendorChange
	}
	if ArchRank(pl.Pool.Str(a.Arch)) > 0 && ArchRank(pl.Pool.Str(b.Arch)) > 0 &&
		archFamily(pl.Pool.Str(a.Arch)) != archFamily(pl.Pool.Str(b.Arch)) {
		c |= ArchChange
	}
	if cmp := pl.compareEvr(a.Evr, b.Evr); cmp > 0 {
		c |= Downgrade
	}

	return c &^ ignoreMask
}

func (pl *Policy) compareEvr(a, b pool.Id) int {
	if pl.Pool == nil {
		return 0
	}
	return evrCompareIds(pl.Pool, a, b)
}

func evrCompareIds(p *pool.IdSpace, a, b pool.Id) int {
	return evr.Compare(p.Str(a), p.Str(b))
}

func (pl *Policy) sameVendorClass(a, b pool.Id) bool {
	if a == b {
		return true
	}
	if pl.VendorClass == nil {
		return false
	}
	sa, sb := pl.Pool.Str(a), pl.Pool.Str(b)
	ca, oka := pl.VendorClass[sa]
	cb, okb := pl.VendorClass[sb]
	return oka && okb && ca == cb
}

func archFamily(arch string) string {
	switch arch {
	case "x86_64", "amd64":
		return "x86_64"
	case "i686", "i386", "i586":
		return "x86_32"
	case "aarch64", "arm64":
		return "arm64"
	case "noarch", "any", "all":
		return "noarch"
	}
	return arch
}

// FindUpdatePackages returns every candidate that may legitimately
// replace installed solvable s. When allowAll is true (feature rules),
// downgrade/arch/vendor/name changes are all permitted; otherwise
// (update rules) each is gated by the corresponding Flags.Allow* bit.
// Provides/obsoletes chains (via the reverse obsoletes index) are
// honored unless Flags.NoUpdateProvide is set.
func (pl *Policy) FindUpdatePackages(s pool.SolvableId, allowAll bool) []pool.SolvableId {
	sv := pl.Pool.Solvable(s)
	var ignore Change
	if allowAll || pl.Flags.AllowDowngrade {
		ignore |= Downgrade
	}
	if allowAll || pl.Flags.AllowArchChange {
		ignore |= ArchChange
	}
	if allowAll || pl.Flags.AllowVendorChange {
		ignore |= VendorChange
	}
	if allowAll || pl.Flags.AllowNameChange {
		ignore |= NameChange
	}

	cands := append([]pool.SolvableId(nil), pl.Pool.WhatProvidesName(sv.Name)...)
	if !pl.Flags.NoUpdateProvide {
		cands = append(cands, pl.obsoletedBy(s)...)
	}

	out := cands[:0:0]
	seen := make(map[pool.SolvableId]bool)
	for _, c := range cands {
		if c == s || seen[c] {
			continue
		}
		seen[c] = true
		if pl.IllegalChange(s, c, ignore) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// obsoletedBy returns every candidate, not necessarily sharing s's name,
// whose Obsoletes edges reach s — i.e. the reverse obsoletes index
// CreateObsoleteIndex builds, queried live here for simplicity.
func (pl *Policy) obsoletedBy(s pool.SolvableId) []pool.SolvableId {
	sv := pl.Pool.Solvable(s)
	var out []pool.SolvableId
	for _, cand := range pl.Pool.AllSolvables() {
		if pl.Pool.Installed(cand) {
			continue
		}
		cv := pl.Pool.Solvable(cand)
		for _, obs := range cv.Obsoletes {
			for _, p := range pl.Pool.WhatProvides(obs) {
				if p == s && cv.Name != sv.Name {
					out = append(out, cand)
				}
			}
		}
	}
	return out
}

// ObsoleteIndex maps each installed solvable to the set of non-installed,
// differently-named solvables that obsolete it (spec.md's
// create_obsolete_index).
type ObsoleteIndex map[pool.SolvableId][]pool.SolvableId

// CreateObsoleteIndex builds the obsolete index over every installed
// solvable.
func (pl *Policy) CreateObsoleteIndex() ObsoleteIndex {
	idx := make(ObsoleteIndex)
	for _, s := range pl.Pool.AllSolvables() {
		if !pl.Pool.Installed(s) {
			continue
		}
		if by := pl.obsoletedBy(s); len(by) > 0 {
			idx[s] = by
		}
	}
	return idx
}

// PruneObsoleted removes name-level duplication introduced when one
// candidate in cands obsoletes another: it runs Tarjan SCC over the
// obsoletes graph restricted to cands and keeps only the component
// containing the first (by sort order) element of each component run,
// per spec.md §4.2.
func (pl *Policy) PruneObsoleted(cands []pool.SolvableId) []pool.SolvableId {
	if len(cands) <= 1 {
		return cands
	}
	present := make(map[int]pool.SolvableId, len(cands))
	nodes := make([]int, 0, len(cands))
	for _, c := range cands {
		present[int(c)] = c
		nodes = append(nodes, int(c))
	}

	adj := func(n int) []int {
		s := present[n]
		var out []int
		for _, obs := range pl.Pool.Solvable(s).Obsoletes {
			for _, p := range pl.Pool.WhatProvides(obs) {
				if _, ok := present[int(p)]; ok {
					out = append(out, int(p))
				}
			}
		}
		return out
	}

	comps := SCC(nodes, adj)
	var out []pool.SolvableId
	for _, comp := range comps {
		best := comp[0]
		for _, n := range comp {
			if n < best {
				best = n
			}
		}
		out = append(out, present[best])
	}
	return out
}
