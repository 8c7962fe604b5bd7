package pool

import "testing"

func TestInternRoundTrip(t *testing.T) {
	p := New()
	id := p.Intern("libfoo")
	if got := p.Str(id); got != "libfoo" {
		t.Fatalf("Str(Intern(%q)) = %q", "libfoo", got)
	}
	if id2 := p.Intern("libfoo"); id2 != id {
		t.Fatalf("re-interning the same string produced a different Id: %d != %d", id2, id)
	}
}

func TestWhatProvidesSelfAndExplicit(t *testing.T) {
	p := New()
	a := p.Intern("A")
	b := p.Intern("B")
	sa := p.AddSolvable(Solvable{Name: a})
	sb := p.AddSolvable(Solvable{Name: b, Provides: []Id{a}})
	p.CreateWhatProvides()

	got := p.WhatProvides(a)
	want := map[SolvableId]bool{sa: true, sb: true}
	if len(got) != len(want) {
		t.Fatalf("WhatProvides(A) = %v, want 2 entries", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected provider %d", s)
		}
	}
}

func TestWhatProvidesRelationEQ(t *testing.T) {
	p := New()
	p.SetEvrComparator(func(a, b string) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})
	name := p.Intern("A")
	v1 := p.Intern("1.0")
	v2 := p.Intern("2.0")
	s1 := p.AddSolvable(Solvable{Name: name, Evr: v1})
	_ = p.AddSolvable(Solvable{Name: name, Evr: v2})
	p.CreateWhatProvides()

	rel := p.InternRelation(Relation{Op: RelEQ, Left: name, Right: v1})
	got := p.WhatProvides(rel)
	if len(got) != 1 || got[0] != s1 {
		t.Fatalf("WhatProvides(A=1.0) = %v, want [%d]", got, s1)
	}
}

func TestWhatProvidesAndOr(t *testing.T) {
	p := New()
	a := p.Intern("A")
	b := p.Intern("B")
	sab := p.AddSolvable(Solvable{Name: a, Provides: []Id{a, b}})
	sa := p.AddSolvable(Solvable{Name: a})
	p.CreateWhatProvides()

	and := p.InternRelation(Relation{Op: RelAnd, Left: a, Right: b})
	if got := p.WhatProvides(and); len(got) != 1 || got[0] != sab {
		t.Fatalf("WhatProvides(A AND B) = %v, want [%d]", got, sab)
	}

	or := p.InternRelation(Relation{Op: RelOr, Left: a, Right: b})
	got := p.WhatProvides(or)
	if len(got) != 2 {
		t.Fatalf("WhatProvides(A OR B) = %v, want both solvables", got)
	}
	_ = sa
}
