package pool

// RelOp classifies a structured Relation. The set matches spec.md's
// REL_EQ/LT/GT/AND/OR/NAMESPACE/ARCH vocabulary.
type RelOp uint8

const (
	// RelEQ, RelLT, RelGT, RelLE and RelGE compare a named package's EVR
	// against the Relation's Evr operand.
	RelEQ RelOp = iota
	RelLT
	RelGT
	RelLE
	RelGE
	// RelAnd requires both operands to be satisfied ("A AND B").
	RelAnd
	// RelOr requires at least one operand to be satisfied ("A OR B").
	RelOr
	// RelNamespace is a synthetic ns(name, evr) relation resolved by a
	// host-provided NamespaceCallback (splitprovides, installed(), …).
	RelNamespace
	// RelArch restricts a relation to solvables of a given architecture.
	RelArch
)

// Relation is a structured dependency: "name op evr", "A AND B", "A OR B",
// or "namespace(name, evr)". Left and Right are reused across operator
// kinds: for comparisons Left is the package-name Id and Right is the evr
// Id; for AND/OR both are Ids of (possibly structured) relations; for
// NAMESPACE Left is the namespace name and Right is the inner expression;
// for ARCH Left is the wrapped relation/name and Right is the arch Id.
type Relation struct {
	Op    RelOp
	Left  Id
	Right Id
}

// relBase is the first Id value reserved for structured relations; Ids
// below it are plain interned strings (names, EVRs, architectures,
// vendors). Keeping one flat counter with a reserved split, rather than
// two disjoint counters, is what lets whatprovides use a single map keyed
// by Id regardless of whether the key names a plain string or a relation.
const relBase Id = 1 << 24

// IsRelation reports whether id denotes a structured Relation rather than
// a plain interned string.
func IsRelation(id Id) bool { return id >= relBase }

// NamespaceCallback resolves a RelNamespace dependency (e.g.
// splitprovides, installed()) against the pool's current solvable set.
// It returns the solvables that satisfy ns(name, evr) for the solvable
// the namespace dependency was evaluated against.
type NamespaceCallback func(ns *IdSpace, name, evr Id, solvable SolvableId) []SolvableId
