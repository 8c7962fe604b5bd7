package sat

import (
	"github.com/solvectl/solvectl/internal/pool"
	"github.com/solvectl/solvectl/internal/rules"
)

// watchTable is the array-of-indices watch scheme spec.md's design notes
// call for in place of libsolv's linked n1/n2 pointer chains: chains
// maps a literal to every rule index currently watching it, and
// pos records which two literal-list positions a given rule currently has
// watched. Binary rules (exactly two literals) never need their watch
// positions to move, since there is nowhere else to move them to.
type watchTable struct {
	chains map[pool.Lit][]rules.Idx
	pos    map[rules.Idx][2]int
}

func newWatchTable() *watchTable {
	return &watchTable{chains: make(map[pool.Lit][]rules.Idx), pos: make(map[rules.Idx][2]int)}
}

// attach registers idx's first two literals as its watched pair. Unit
// assertions (a single literal) are never attached; they're handled
// directly as forced decisions.
func (w *watchTable) attach(store *rules.Store, idx rules.Idx) {
	r := store.Rule(idx)
	if len(r.Literals) < 2 {
		return
	}
	w.pos[idx] = [2]int{0, 1}
	w.chains[r.Literals[0]] = append(w.chains[r.Literals[0]], idx)
	w.chains[r.Literals[1]] = append(w.chains[r.Literals[1]], idx)
}

func (w *watchTable) detach(lit pool.Lit, idx rules.Idx) {
	chain := w.chains[lit]
	for i, r := range chain {
		if r == idx {
			w.chains[lit] = append(chain[:i:i], chain[i+1:]...)
			return
		}
	}
}

// rehook moves idx's watch away from oldLit (one of its two watched
// literals, now falsified) onto its literal at position newPos.
func (w *watchTable) rehook(store *rules.Store, idx rules.Idx, oldLit pool.Lit, oldPos, otherPos, newPos int) {
	w.detach(oldLit, idx)
	w.pos[idx] = [2]int{newPos, otherPos}
	newLit := store.Rule(idx).Literals[newPos]
	w.chains[newLit] = append(w.chains[newLit], idx)
}
