package pool

import "fmt"

// WhatProvides resolves d — a plain name Id or a structured Relation Id —
// against the whatprovides index, recursing through REL_AND, REL_OR,
// REL_NAMESPACE and REL_ARCH as spec.md §3 describes. The returned slice
// is freshly allocated and safe for the caller to mutate.
func (p *IdSpace) WhatProvides(d Id) []SolvableId {
	if !IsRelation(d) {
		return append([]SolvableId(nil), p.whatprovides[d]...)
	}

	r := p.Relation(d)
	switch r.Op {
	case RelAnd:
		left := p.WhatProvides(r.Left)
		right := p.WhatProvides(r.Right)
		return intersect(left, right)
	case RelOr:
		left := p.WhatProvides(r.Left)
		right := p.WhatProvides(r.Right)
		return union(left, right)
	case RelNamespace:
		if p.NamespaceCallback == nil {
			return nil
		}
		// Namespace providers aren't solvable-specific here; callers that
		// need the per-solvable form use NamespaceCallback directly via
		// DepFulfilled.
		return p.NamespaceCallback(p, r.Left, r.Right, NoSolvable)
	case RelArch:
		base := p.WhatProvides(r.Left)
		out := base[:0:0]
		for _, s := range base {
			if p.solvables[s].Arch == r.Right {
				out = append(out, s)
			}
		}
		return out
	default: // RelEQ, RelLT, RelGT, RelLE, RelGE
		name := r.Left
		cands := p.whatprovides[name]
		out := make([]SolvableId, 0, len(cands))
		for _, s := range cands {
			if p.evrSatisfies(s, name, r.Op, r.Right) {
				out = append(out, s)
			}
		}
		return out
	}
}

// evrSatisfies checks whether solvable s, which provides name (plainly or
// via a provides entry), satisfies the EVR comparison against target.
func (p *IdSpace) evrSatisfies(s SolvableId, name Id, op RelOp, target Id) bool {
	sv := &p.solvables[s]
	evr := sv.Evr
	if sv.Name != name {
		// s provides `name` via an explicit, possibly versioned, Provides
		// entry; find the matching relation (if any) to pick up its own
		// EVR, else fall back to the solvable's own EVR.
		for _, pr := range sv.Provides {
			if IsRelation(pr) {
				pr := p.Relation(pr)
				if pr.Left == name {
					evr = pr.Right
					break
				}
			}
		}
	}
	if p.cmp == nil || evr == NoId || target == NoId {
		return op == RelEQ && evr == target
	}
	c := p.cmp(p.Str(evr), p.Str(target))
	switch op {
	case RelEQ:
		return c == 0
	case RelLT:
		return c < 0
	case RelGT:
		return c > 0
	case RelLE:
		return c <= 0
	case RelGE:
		return c >= 0
	}
	return false
}

// DepFulfilled reports whether dependency d is already satisfied given
// decided is a set of positively-decided SolvableIds, following
// spec.md §4 supplemented features ("solver_dep_fulfilled" semantics).
func (p *IdSpace) DepFulfilled(d Id, decided map[SolvableId]bool) bool {
	for _, s := range p.WhatProvides(d) {
		if decided[s] {
			return true
		}
	}
	return false
}

// RelationString renders a relation Id as "name op evr" / "A AND B" /
// "namespace(name, evr)" for error messages and tracing.
func (p *IdSpace) RelationString(id Id) string {
	r := p.Relation(id)
	switch r.Op {
	case RelAnd:
		return fmt.Sprintf("(%s AND %s)", p.Str(r.Left), p.Str(r.Right))
	case RelOr:
		return fmt.Sprintf("(%s OR %s)", p.Str(r.Left), p.Str(r.Right))
	case RelNamespace:
		return fmt.Sprintf("namespace:%s(%s)", p.Str(r.Left), p.Str(r.Right))
	case RelArch:
		return fmt.Sprintf("%s.%s", p.Str(r.Left), p.Str(r.Right))
	default:
		return fmt.Sprintf("%s%s%s", p.Str(r.Left), opSymbol(r.Op), p.Str(r.Right))
	}
}

func opSymbol(op RelOp) string {
	switch op {
	case RelEQ:
		return "="
	case RelLT:
		return "<"
	case RelGT:
		return ">"
	case RelLE:
		return "<="
	case RelGE:
		return ">="
	}
	return "?"
}

func intersect(a, b []SolvableId) []SolvableId {
	set := make(map[SolvableId]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	out := make([]SolvableId, 0, len(a))
	for _, s := range a {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}

func union(a, b []SolvableId) []SolvableId {
	set := make(map[SolvableId]bool, len(a)+len(b))
	out := make([]SolvableId, 0, len(a)+len(b))
	for _, s := range append(a, b...) {
		if !set[s] {
			set[s] = true
			out = append(out, s)
		}
	}
	return out
}
