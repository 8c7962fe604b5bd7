// Package selection compiles a user-provided pattern string into a job
// queue, per spec.md §4.6. It never decides which candidate to install;
// it only resolves a name/relation/path pattern against the pool's
// whatprovides and radix-tree name index into a concrete set of
// SOLVABLE_NAME or SOLVABLE_PROVIDES job targets.
package selection

import (
	"sort"
	"strings"

	"github.com/solvectl/solvectl/internal/job"
	"github.com/solvectl/solvectl/internal/policy"
	"github.com/solvectl/solvectl/internal/pool"
)

// Flag is one bit of the flag mask spec.md §4.6 enumerates, controlling
// which matching strategies Select tries and how.
type Flag uint32

const (
	Name Flag = 1 << iota
	Provides
	Filelist
	Canon
	Dotarch
	Rel
	InstalledOnly
	Glob
	Flat
	NoCase
	SourceOnly
	WithSource
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }

// Select implements spec.md §4.6's matching precedence: absolute path →
// filelist, relation operators → name(.arch) op evr, exact/glob
// name-or-provides, then canonical name-evr[.arch] forms.
func Select(p *pool.IdSpace, pattern string, flags Flag, how job.How) job.Queue {
	if flags.has(Filelist) && strings.HasPrefix(pattern, "/") {
		if q := selectFilelist(p, pattern, flags, how); q != nil {
			return q
		}
	}

	if flags.has(Rel) {
		if name, op, rhs, ok := splitRelation(pattern); ok {
			return selectRelation(p, name, op, rhs, flags, how)
		}
	}

	if q := selectNameOrProvides(p, pattern, flags, how); len(q) > 0 {
		return q
	}

	if name, evrStr, arch, ok := splitCanonical(p, pattern); ok {
		return selectCanonical(p, name, evrStr, arch, flags, how)
	}

	return nil
}

// selectFilelist is the "absolute path" precedence case; the solver core
// has no file-list metadata of its own (spec.md §1 places the repository
// reader out of scope), so this always reports no match rather than
// guessing — a store-backed implementation can still satisfy Filelist
// patterns by resolving them to a name before calling Select.
func selectFilelist(p *pool.IdSpace, pattern string, flags Flag, how job.How) job.Queue {
	return nil
}

// splitRelation recognizes "name op evr" where op is one of <, <=, =,
// ==, >=, >, and reports its three parts.
func splitRelation(pattern string) (name, op, rhs string, ok bool) {
	for _, cand := range []string{"<=", ">=", "==", "<", ">", "="} {
		if i := strings.Index(pattern, cand); i > 0 {
			return strings.TrimSpace(pattern[:i]), cand, strings.TrimSpace(pattern[i+len(cand):]), true
		}
	}
	return "", "", "", false
}

func relOpFor(op string) pool.RelOp {
	switch op {
	case "<":
		return pool.RelLT
	case "<=":
		return pool.RelLE
	case ">":
		return pool.RelGT
	case ">=":
		return pool.RelGE
	default:
		return pool.RelEQ
	}
}

// selectRelation builds a SOLVABLE_PROVIDES job for "name(.arch) op evr",
// applying selection_filter_evr's epoch promotion first.
func selectRelation(p *pool.IdSpace, name, op, rhs string, flags Flag, how job.How) job.Queue {
	base, arch, hasArch := splitArchSuffix(name)
	nameId, ok := lookupName(p, base, flags)
	if !ok {
		return nil
	}
	rhs = filterEvrEpoch(p, nameId, rhs)
	relId := p.InternRelation(pool.Relation{Op: relOpFor(op), Left: nameId, Right: p.Intern(rhs)})
	if hasArch {
		relId = p.InternRelation(pool.Relation{Op: pool.RelArch, Left: relId, Right: p.Intern(arch)})
	}
	return job.Queue{{How: how, What: job.WhatProvides, Id: relId}}
}

// filterEvrEpoch implements selection_filter_evr: when every candidate
// providing nameId shares a single epoch, and rhs doesn't already name
// one, the epoch is prefixed onto rhs before the relation is built.
func filterEvrEpoch(p *pool.IdSpace, nameId pool.Id, rhs string) string {
	if strings.Contains(rhs, ":") {
		return rhs
	}
	epoch := ""
	consistent := true
	for _, s := range p.WhatProvidesName(nameId) {
		e := p.Str(p.Solvable(s).Evr)
		idx := strings.Index(e, ":")
		this := "0"
		if idx >= 0 {
			this = e[:idx]
		}
		if epoch == "" {
			epoch = this
		} else if epoch != this {
			consistent = false
			break
		}
	}
	if consistent && epoch != "" && epoch != "0" {
		return epoch + ":" + rhs
	}
	return rhs
}

// selectNameOrProvides handles exact-or-glob matching against names and
// provides, with an optional ".arch" suffix.
func selectNameOrProvides(p *pool.IdSpace, pattern string, flags Flag, how job.How) job.Queue {
	base, arch, hasArch := splitArchSuffix(pattern)

	var ids []pool.Id
	if flags.has(Glob) && strings.ContainsAny(base, "*?[") {
		ids = globMatch(p, base)
	} else if id, ok := p.Lookup(base); ok {
		ids = []pool.Id{id}
	}
	if len(ids) == 0 {
		return nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var q job.Queue
	for _, id := range ids {
		if flags.has(InstalledOnly) && len(p.WhatProvidesName(id)) > 0 {
			anyInstalled := false
			for _, s := range p.WhatProvidesName(id) {
				if p.Installed(s) {
					anyInstalled = true
					break
				}
			}
			if !anyInstalled {
				continue
			}
		}
		target := id
		if hasArch {
			target = p.InternRelation(pool.Relation{Op: pool.RelArch, Left: id, Right: p.Intern(arch)})
		}
		what := job.WhatName
		if flags.has(Provides) && !flags.has(Name) {
			what = job.WhatProvides
		}
		q = append(q, job.Job{How: how, What: what, Id: target})
	}
	return q
}

// globMatch walks the pool's radix-backed name index for every string
// satisfying the glob pattern. Only "*" (handled via WalkPrefix on the
// pattern's fixed prefix, then a suffix re-check) and "?" wildcards are
// supported, matching spec.md's "Contains glob" precedence case.
func globMatch(p *pool.IdSpace, pattern string) []pool.Id {
	prefix := pattern
	if i := strings.IndexAny(pattern, "*?["); i >= 0 {
		prefix = pattern[:i]
	}
	var out []pool.Id
	p.WalkPrefix(prefix, func(s string, id pool.Id) bool {
		if globMatchString(pattern, s) {
			out = append(out, id)
		}
		return true
	})
	return out
}

func globMatchString(pattern, s string) bool {
	return globMatchRunes([]rune(pattern), []rune(s))
}

func globMatchRunes(p, s []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if globMatchRunes(p[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(s) == 0 {
			return false
		}
		return globMatchRunes(p[1:], s[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return globMatchRunes(p[1:], s[1:])
	}
}

// splitArchSuffix splits a trailing ".arch" off pattern, if present and
// the suffix looks like a known architecture token.
func splitArchSuffix(pattern string) (base, arch string, ok bool) {
	i := strings.LastIndex(pattern, ".")
	if i < 0 || policy.ArchRank(pattern[i+1:]) == 0 {
		return pattern, "", false
	}
	return pattern[:i], pattern[i+1:], true
}

func lookupName(p *pool.IdSpace, name string, flags Flag) (pool.Id, bool) {
	return p.Lookup(name)
}

// splitCanonical recognizes "name-evr[.arch]" (rpm), "name_evr[_arch]"
// (deb), or "name-evr[-arch]" (haiku) canonical strings by trying each
// separator convention against the pool's interned names, preferring the
// longest matching name prefix (so "foo-bar-1.0" resolves to name
// "foo-bar" over "foo" when both are interned).
func splitCanonical(p *pool.IdSpace, pattern string) (name, evrStr, arch string, ok bool) {
	tryDash := canonicalSplit(p, pattern, "-")
	tryUnderscore := canonicalSplit(p, pattern, "_")
	switch {
	case tryDash != nil:
		return tryDash.name, tryDash.evr, tryDash.arch, true
	case tryUnderscore != nil:
		return tryUnderscore.name, tryUnderscore.evr, tryUnderscore.arch, true
	}
	return "", "", "", false
}

type canonicalParts struct{ name, evr, arch string }

func canonicalSplit(p *pool.IdSpace, pattern, sep string) *canonicalParts {
	parts := strings.Split(pattern, sep)
	if len(parts) < 2 {
		return nil
	}
	for cut := len(parts) - 1; cut >= 1; cut-- {
		name := strings.Join(parts[:cut], sep)
		if _, ok := p.Lookup(name); !ok {
			continue
		}
		rest := parts[cut:]
		if last := rest[len(rest)-1]; len(rest) > 1 && policy.ArchRank(last) > 0 {
			return &canonicalParts{name: name, evr: strings.Join(rest[:len(rest)-1], sep), arch: last}
		}
		evr := strings.Join(rest, sep)
		if i := strings.LastIndex(evr, "."); i >= 0 && policy.ArchRank(evr[i+1:]) > 0 {
			return &canonicalParts{name: name, evr: evr[:i], arch: evr[i+1:]}
		}
		return &canonicalParts{name: name, evr: evr}
	}
	return nil
}

func selectCanonical(p *pool.IdSpace, name, evrStr, arch string, flags Flag, how job.How) job.Queue {
	nameId, ok := p.Lookup(name)
	if !ok {
		return nil
	}
	relId := p.InternRelation(pool.Relation{Op: pool.RelEQ, Left: nameId, Right: p.Intern(evrStr)})
	if arch != "" {
		relId = p.InternRelation(pool.Relation{Op: pool.RelArch, Left: relId, Right: p.Intern(arch)})
	}
	return job.Queue{{How: how, What: job.WhatProvides, Id: relId}}
}
