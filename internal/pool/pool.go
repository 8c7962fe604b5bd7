package pool

import (
	"sort"

	radix "github.com/armon/go-radix"
)

// IdSpace interns names, EVRs, architectures, vendors and relations into
// Ids, holds the solvable table, and (after CreateWhatProvides) the
// whatprovides index. It is the single authority the rest of solvectl's
// packages read from.
//
// Built on armon/go-radix, which normally stores package-path trees;
// here the same tree indexes interned name strings so that selection's
// glob/prefix matching (spec.md §4.6) can walk a prefix directly instead
// of scanning every interned string.
type IdSpace struct {
	names *radix.Tree // string -> Id, for plain (non-relation) strings
	strs  []string    // Id -> string, index 0 unused

	relations []Relation       // Id-relBase -> Relation
	relIndex  map[Relation]Id  // dedup structured relations

	solvables []Solvable // SolvableId -> Solvable, index 0 unused
	repos     []Repo     // RepoId -> Repo, index 0 unused

	installedRepo RepoId
	arch          Id // the pool's preferred/base architecture, 0 if unset

	whatprovides map[Id][]SolvableId

	// Flags mirror the pool-level booleans spec.md §4.1 references
	// (forbidselfconflicts, implicitobsoleteusesprovides, …).
	Flags Flags

	NamespaceCallback NamespaceCallback

	// cmp compares two interned EVR strings; wired by the evr package at
	// solver construction time (pool deliberately does not import evr, to
	// keep evrcmp an external collaborator per spec.md §1).
	cmp EvrComparator
}

// EvrComparator orders two EVR strings the way evrcmp does: negative if
// a < b, zero if equal, positive if a > b.
type EvrComparator func(a, b string) int

// SetEvrComparator wires the version-comparison collaborator. Must be
// called before any relation using RelEQ/LT/GT/LE/GE is evaluated.
func (p *IdSpace) SetEvrComparator(cmp EvrComparator) { p.cmp = cmp }

// Flags holds the pool-level booleans the rule builder consults.
type Flags struct {
	ForbidSelfConflicts          bool
	ImplicitObsoleteUsesProvides bool
	ObsoleteUsesColors           bool
}

// New returns an empty IdSpace seeded with the SystemSolvable.
func New() *IdSpace {
	p := &IdSpace{
		names:    radix.New(),
		strs:     []string{""},
		relIndex: make(map[Relation]Id),
		solvables: []Solvable{
			{}, // index 0, unused
			{Name: 0}, // SystemSolvable, filled below
		},
		repos:        []Repo{{}},
		whatprovides: make(map[Id][]SolvableId),
	}
	sysName := p.Intern("system:system")
	p.solvables[SystemSolvable] = Solvable{Name: sysName}
	return p
}

// Intern returns the Id for s, allocating a new one if s has not been
// seen before.
func (p *IdSpace) Intern(s string) Id {
	if v, ok := p.names.Get(s); ok {
		return v.(Id)
	}
	id := Id(len(p.strs))
	p.strs = append(p.strs, s)
	p.names.Insert(s, id)
	return id
}

// Lookup returns the Id for s without interning, and whether it exists.
func (p *IdSpace) Lookup(s string) (Id, bool) {
	v, ok := p.names.Get(s)
	if !ok {
		return NoId, false
	}
	return v.(Id), true
}

// Str returns the interned string for a plain (non-relation) Id.
func (p *IdSpace) Str(id Id) string {
	if IsRelation(id) {
		return p.RelationString(id)
	}
	if int(id) >= len(p.strs) {
		return "<bad id>"
	}
	return p.strs[id]
}

// WalkPrefix calls fn for every interned name with the given prefix, in
// lexicographic order, stopping early if fn returns false. Used by
// selection's glob/prefix matching.
func (p *IdSpace) WalkPrefix(prefix string, fn func(s string, id Id) bool) {
	p.names.WalkPrefix(prefix, func(s string, v interface{}) bool {
		return !fn(s, v.(Id))
	})
}

// InternRelation returns the Id for a structured Relation, deduplicating
// against previously-seen relations.
func (p *IdSpace) InternRelation(r Relation) Id {
	if id, ok := p.relIndex[r]; ok {
		return id
	}
	id := relBase + Id(len(p.relations))
	p.relations = append(p.relations, r)
	p.relIndex[r] = id
	return id
}

// Relation returns the structured Relation for a relation Id.
func (p *IdSpace) Relation(id Id) Relation {
	return p.relations[id-relBase]
}

// AddRepo creates a new, empty repository.
func (p *IdSpace) AddRepo(name string, priority int) RepoId {
	id := RepoId(len(p.repos))
	p.repos = append(p.repos, Repo{Id: id, Name: name, Priority: priority})
	return id
}

// SetInstalled marks repo as the distinguished "installed" repository.
func (p *IdSpace) SetInstalled(repo RepoId) { p.installedRepo = repo }

// InstalledRepo returns the installed repository, or NoRepo if unset.
func (p *IdSpace) InstalledRepo() RepoId { return p.installedRepo }

// Repo returns repository metadata.
func (p *IdSpace) Repo(id RepoId) Repo { return p.repos[id] }

// SetArch records the pool's base/native architecture.
func (p *IdSpace) SetArch(archName string) { p.arch = p.Intern(archName) }

// Arch returns the pool's base architecture Id, or NoId if unset.
func (p *IdSpace) Arch() Id { return p.arch }

// AddSolvable appends s to the pool and returns its new SolvableId.
func (p *IdSpace) AddSolvable(s Solvable) SolvableId {
	id := SolvableId(len(p.solvables))
	p.solvables = append(p.solvables, s)
	return id
}

// Solvable returns the record for id.
func (p *IdSpace) Solvable(id SolvableId) *Solvable { return &p.solvables[id] }

// NumSolvables returns the count of allocated solvables, including the
// system solvable but excluding the unused index 0.
func (p *IdSpace) NumSolvables() int { return len(p.solvables) - 1 }

// AllSolvables iterates every allocated SolvableId in ascending order.
func (p *IdSpace) AllSolvables() []SolvableId {
	ids := make([]SolvableId, 0, len(p.solvables)-1)
	for i := 1; i < len(p.solvables); i++ {
		ids = append(ids, SolvableId(i))
	}
	return ids
}

// Installed reports whether s belongs to the installed repo.
func (p *IdSpace) Installed(s SolvableId) bool {
	if p.installedRepo == NoRepo {
		return false
	}
	return p.solvables[s].Repo == p.installedRepo
}

// CreateWhatProvides builds the provides index over every plain (name or
// version-qualified-name) Id that appears in some solvable's Provides
// list, plus an implicit self-provide of each solvable's own Name. After
// this call the IdSpace must be treated as read-only for the duration of
// any concurrent Solver runs (spec.md §5).
func (p *IdSpace) CreateWhatProvides() {
	p.whatprovides = make(map[Id][]SolvableId)
	for i := 1; i < len(p.solvables); i++ {
		sid := SolvableId(i)
		sv := &p.solvables[i]
		if sv.Name != 0 {
			p.whatprovides[sv.Name] = append(p.whatprovides[sv.Name], sid)
		}
		for _, pr := range sv.Provides {
			name := pr
			if IsRelation(pr) {
				name = p.RelationBaseName(pr)
			}
			p.whatprovides[name] = append(p.whatprovides[name], sid)
		}
	}
	for k, v := range p.whatprovides {
		sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
		uniq := v[:0]
		for _, s := range v {
			if len(uniq) == 0 || uniq[len(uniq)-1] != s {
				uniq = append(uniq, s)
			}
		}
		p.whatprovides[k] = uniq
	}
}

// RelationBaseName returns the plain name Id a structured relation
// ultimately constrains, following AND/OR/ARCH/NAMESPACE wrappers down to
// the first comparison or namespace operator's Left operand.
func (p *IdSpace) RelationBaseName(id Id) Id {
	for IsRelation(id) {
		r := p.Relation(id)
		switch r.Op {
		case RelAnd, RelOr:
			id = r.Left
		case RelArch:
			id = r.Left
		default:
			return r.Left
		}
	}
	return id
}

// WhatProvidesName returns the raw, precomputed provider list for a plain
// name Id (no relation evaluation). Callers needing relation semantics
// should use WhatProvides instead.
func (p *IdSpace) WhatProvidesName(name Id) []SolvableId {
	return p.whatprovides[name]
}
