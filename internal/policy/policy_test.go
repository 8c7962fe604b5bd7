package policy

import (
	"testing"

	"github.com/solvectl/solvectl/internal/flags"
	"github.com/solvectl/solvectl/internal/pool"
)

func newTestPool() *pool.IdSpace {
	p := pool.New()
	p.SetEvrComparator(func(a, b string) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return p
}

func TestPruneToBestVersion(t *testing.T) {
	p := newTestPool()
	name := p.Intern("A")
	old := p.AddSolvable(pool.Solvable{Name: name, Evr: p.Intern("1.0")})
	newer := p.AddSolvable(pool.Solvable{Name: name, Evr: p.Intern("2.0")})
	p.CreateWhatProvides()

	pl := New(p, flags.Default())
	out := pl.PruneToBestVersion([]pool.SolvableId{old, newer})
	if len(out) != 1 || out[0] != newer {
		t.Fatalf("PruneToBestVersion = %v, want [%d]", out, newer)
	}
}

func TestIllegalChangeNameChange(t *testing.T) {
	p := newTestPool()
	a := p.AddSolvable(pool.Solvable{Name: p.Intern("A"), Evr: p.Intern("1.0")})
	b := p.AddSolvable(pool.Solvable{Name: p.Intern("B"), Evr: p.Intern("1.0")})
	p.CreateWhatProvides()

	pl := New(p, flags.Flags{})
	c := pl.IllegalChange(a, b, 0)
	if c&NameChange == 0 {
		t.Fatalf("expected NameChange bit set, got %v", c)
	}
}

func TestFindUpdatePackagesRespectsDowngradeFlag(t *testing.T) {
	p := newTestPool()
	name := p.Intern("A")
	installed := p.AddSolvable(pool.Solvable{Name: name, Evr: p.Intern("2.0")})
	p.Solvable(installed).Repo = p.AddRepo("installed", 0)
	p.SetInstalled(p.Solvable(installed).Repo)
	older := p.AddSolvable(pool.Solvable{Name: name, Evr: p.Intern("1.0")})
	p.CreateWhatProvides()

	pl := New(p, flags.Flags{})
	out := pl.FindUpdatePackages(installed, false)
	for _, c := range out {
		if c == older {
			t.Fatalf("downgrade to %d should be excluded without AllowDowngrade", older)
		}
	}

	pl2 := New(p, flags.Flags{AllowDowngrade: true})
	out2 := pl2.FindUpdatePackages(installed, false)
	found := false
	for _, c := range out2 {
		if c == older {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected downgrade candidate with AllowDowngrade set")
	}
}
