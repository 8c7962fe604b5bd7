package main

import (
	"github.com/pelletier/go-toml"

	"github.com/solvectl/solvectl/internal/flags"
)

// flagsFile is the `[flags]` table schema a TOML config file decodes
// into: flag-bag names matching spec.md §6 rather than a
// dependency-constraint schema.
type flagsFile struct {
	Flags struct {
		AllowDowngrade        bool `toml:"allow_downgrade"`
		AllowNameChange       bool `toml:"allow_namechange"`
		AllowArchChange       bool `toml:"allow_archchange"`
		AllowVendorChange     bool `toml:"allow_vendorchange"`
		AllowUninstall        bool `toml:"allow_uninstall"`
		NoUpdateProvide       bool `toml:"no_updateprovide"`
		SplitProvides         bool `toml:"splitprovides"`
		IgnoreRecommended     bool `toml:"ignore_recommended"`
		AddAlreadyRecommended bool `toml:"add_already_recommended"`
		NoInfArchCheck        bool `toml:"no_infarchcheck"`
		KeepExplicitObsoletes bool `toml:"keep_explicit_obsoletes"`
		BestObeyPolicy        bool `toml:"best_obey_policy"`
		NoAutoTarget          bool `toml:"no_autotarget"`
	} `toml:"flags"`
}

// loadFlags reads a solver-flags TOML file, defaulting every field not
// present in [flags] to flags.Default()'s value (so an empty file, or
// one that omits allow_namechange, still gets ALLOW_NAMECHANGE=1 per
// spec.md §6).
func loadFlags(path string) (flags.Flags, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return flags.Flags{}, err
	}

	f := flagsFile{}
	f.Flags.AllowNameChange = true
	if err := tree.Unmarshal(&f); err != nil {
		return flags.Flags{}, err
	}

	return flags.Flags{
		AllowDowngrade:        f.Flags.AllowDowngrade,
		AllowNameChange:       f.Flags.AllowNameChange,
		AllowArchChange:       f.Flags.AllowArchChange,
		AllowVendorChange:     f.Flags.AllowVendorChange,
		AllowUninstall:        f.Flags.AllowUninstall,
		NoUpdateProvide:       f.Flags.NoUpdateProvide,
		SplitProvides:         f.Flags.SplitProvides,
		IgnoreRecommended:     f.Flags.IgnoreRecommended,
		AddAlreadyRecommended: f.Flags.AddAlreadyRecommended,
		NoInfArchCheck:        f.Flags.NoInfArchCheck,
		KeepExplicitObsoletes: f.Flags.KeepExplicitObsoletes,
		BestObeyPolicy:        f.Flags.BestObeyPolicy,
		NoAutoTarget:          f.Flags.NoAutoTarget,
	}, nil
}
