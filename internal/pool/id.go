// Package pool implements the interned identifier space that everything
// else in solvectl is built on: names, versions, architectures and the
// structured relations between them, plus the whatprovides index used to
// turn a dependency into the set of solvables that satisfy it.
//
// This mirrors the role of libsolv's Pool, but keeps a single authority
// (IdSpace) rather than splitting interning across a source manager and
// a bridge.
package pool

import "fmt"

// Id is an interned identifier for a name, version/release string,
// architecture or a structured Relation. Id 0 is never valid.
type Id uint32

// NoId is the zero value of Id; it never denotes a real identifier.
const NoId Id = 0

// SolvableId indexes into an IdSpace's solvable table. Unlike libsolv,
// solvable identity does not share a namespace with string/relation Ids;
// keeping it a distinct type is the typed-container re-architecture
// spec.md's design notes call for.
type SolvableId int32

// NoSolvable is the zero value of SolvableId.
const NoSolvable SolvableId = 0

// SystemSolvable is the distinguished pseudo-package representing the
// installation environment itself (kernel, libc, whatever the host
// declares). It is always SolvableId(1).
const SystemSolvable SolvableId = 1

// Lit is a signed literal over a SolvableId: positive means "install",
// negative means "forbid". Lit 0 is never valid.
type Lit int32

// LitOf returns the positive literal for s.
func LitOf(s SolvableId) Lit { return Lit(s) }

// Negate returns the opposite-polarity literal.
func (l Lit) Negate() Lit { return -l }

// Solvable returns the unsigned solvable this literal refers to.
func (l Lit) Solvable() SolvableId {
	if l < 0 {
		return SolvableId(-l)
	}
	return SolvableId(l)
}

// Positive reports whether the literal asserts installation (true) or
// forbids it (false).
func (l Lit) Positive() bool { return l > 0 }

func (l Lit) String() string {
	if l > 0 {
		return fmt.Sprintf("+%d", int32(l))
	}
	return fmt.Sprintf("-%d", int32(-l))
}
