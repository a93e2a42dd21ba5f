// Package config collects the tunable parameters of one beam-search
// round into a single plain struct, in the teacher's no-framework
// style: kanso hardcodes its CLI/runtime behavior directly in main.go
// rather than routing it through a config package, so this is the one
// ambient concern genuinely new to this system rather than adapted
// from a teacher file — a plain struct with a Default constructor, the
// simplest shape that fits.
package config

import "time"

// Beam bounds every resource-sensitive stage of a round: the analysis
// beam widths, how many newly learned libraries are kept per round, the
// anti-unification admissibility gates, and the saturation limits.
type Beam struct {
	// BeamSize and InterBeamSize bound costset.Analysis's per-e-class
	// frontier and its between-cross intermediate frontier.
	BeamSize      int
	InterBeamSize int

	// LPS (libs-per-step) caps how many newly anti-unified library
	// candidates a single round turns into rewrites, cheapest-pattern
	// (fewest holes, then discovery order) first; the rest are left for
	// a later round to rediscover once the kept libraries have changed
	// the e-graph's shape.
	LPS int

	// ExtraPOR is passed through to costset.Config; costset does not
	// read it, so it has no effect on pruning.
	ExtraPOR bool

	// MaxArity and LearnConstants gate antiunify.Learn's admissibility
	// check.
	MaxArity       int
	LearnConstants bool

	// TimeLimit bounds egraph.Saturate for both the DSR pass and the
	// library-rewrite pass; NodeLimit bounds the library-rewrite pass,
	// which always runs a single iteration. IterLimit is not read by the
	// round driver.
	NodeLimit int
	IterLimit int
	TimeLimit time.Duration
}

// Default returns the typical values named for beam-search experiments:
// beam_size=400, inter_beam_size=400, max_arity=3, node_limit=1_000_000.
func Default() Beam {
	return Beam{
		BeamSize:       400,
		InterBeamSize:  400,
		LPS:            10,
		ExtraPOR:       false,
		MaxArity:       3,
		LearnConstants: true,
		NodeLimit:      1_000_000,
		IterLimit:      30,
		TimeLimit:      10 * time.Second,
	}
}
