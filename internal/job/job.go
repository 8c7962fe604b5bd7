// Package job defines the user-facing request vocabulary — install X,
// erase Y, distupgrade, verify, lock, drop-orphans — that the rule
// builder compiles into job rules (spec.md §4.1) and that the
// problem/solution layer reports back against (spec.md §4.4).
package job

import "github.com/solvectl/solvectl/internal/pool"

// How is the job verb.
type How uint8

const (
	Install How = iota
	Erase
	Update
	Distupgrade
	Verify
	Lock
	DropOrphans
	UserInstalled
)

func (h How) String() string {
	switch h {
	case Install:
		return "install"
	case Erase:
		return "erase"
	case Update:
		return "update"
	case Distupgrade:
		return "distupgrade"
	case Verify:
		return "verify"
	case Lock:
		return "lock"
	case DropOrphans:
		return "drop-orphans"
	case UserInstalled:
		return "userinstalled"
	}
	return "unknown"
}

// What classifies how the job's target was selected, mirroring spec.md
// §4.1's SOLVABLE / SOLVABLE_NAME / SOLVABLE_PROVIDES / SOLVABLE_ONE_OF /
// SOLVABLE_REPO / SOLVABLE_ALL selection types.
type What uint8

const (
	WhatSolvable What = iota
	WhatName
	WhatProvides
	WhatOneOf
	WhatRepo
	WhatAll
)

// Job is one element of the job queue passed to Solve.
type Job struct {
	How How
	What What

	// Id is the name or relation Id when What is WhatName or
	// WhatProvides.
	Id pool.Id

	// Solvable is the target when What is WhatSolvable.
	Solvable pool.SolvableId

	// Repo is the target when What is WhatRepo (also used by
	// Distupgrade jobs to name the repo set dup may pull from).
	Repo pool.RepoId

	// OneOf lists alternatives when What is WhatOneOf.
	OneOf []pool.SolvableId

	// CleanDeps marks an Erase/Update job as one whose collateral,
	// now-unneeded installed dependencies should also be removed
	// (spec.md §4.5).
	CleanDeps bool

	// Essential marks a job as one refine_suggestion should not propose
	// dropping except as a last resort (spec.md §4.4).
	Essential bool

	// ForceBest requests SOLVER_FORCEBEST semantics for Install jobs
	// (spec.md §4.1's best rules).
	ForceBest bool
}

// Queue is an ordered list of jobs; position is significant (job rules
// are resolved, and reported on, by queue index).
type Queue []Job
