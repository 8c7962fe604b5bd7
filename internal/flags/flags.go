// Package flags holds the solver flag bag (spec.md §6) in one place so
// the rule builder, policy and SAT engine packages can all read it
// without importing each other.
package flags

// Flags are the solver-wide booleans spec.md §6 enumerates. All default
// false except where noted.
type Flags struct {
	AllowDowngrade         bool
	AllowNameChange        bool // default true
	AllowArchChange        bool
	AllowVendorChange      bool
	AllowUninstall         bool
	NoUpdateProvide        bool
	SplitProvides          bool
	IgnoreRecommended      bool
	AddAlreadyRecommended  bool
	NoInfArchCheck         bool
	KeepExplicitObsoletes  bool
	BestObeyPolicy         bool
	NoAutoTarget           bool
}

// Default returns the flag set with AllowNameChange on, matching
// spec.md §6's stated default.
func Default() Flags {
	return Flags{AllowNameChange: true}
}
