package pool

// RepoId identifies a repository (pool of candidate solvables), including
// the distinguished "installed" repo.
type RepoId int32

// NoRepo is the zero value of RepoId.
const NoRepo RepoId = 0

// Repo is a named, prioritized collection of solvables.
type Repo struct {
	Id       RepoId
	Name     string
	Priority int
	SubPrio  int
}

// Solvable is the immutable record spec.md §3 describes: a candidate
// package together with its dependency edges, each an offset into a
// shared Id slice so that sharing common requires/provides lists across
// many solvables costs no extra allocation.
type Solvable struct {
	Name   Id
	Evr    Id
	Arch   Id
	Vendor Id
	Repo   RepoId

	Requires    []Id
	Provides    []Id
	Obsoletes   []Id
	Conflicts   []Id
	Recommends  []Id
	Suggests    []Id
	Supplements []Id
	Enhances    []Id

	// Prereq marks, by index into Requires, which requirements must be
	// satisfied before the package itself may be unpacked (spec.md's
	// PREREQ marker). It is a bitset-by-index because prereqs are rare.
	Prereq map[int]bool

	// Disabled means the solvable is not installable regardless of its
	// dependency edges (e.g. excluded architecture, excluded repo).
	Disabled bool

	// Multiversion marks a solvable id for which multiple EVRs may
	// legally coexist, per spec.md's Multiversion definition.
	Multiversion bool
}
