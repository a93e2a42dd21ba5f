// Package experiment is the outer batch driver: it runs many
// independent (input group, beam configuration) combinations, each
// through its own round.Driver and round.Rounds pipeline, fanned out
// with bounded concurrency, per spec.md §5 ("Experiment batches ... may
// be parallelized at the outer level by the driver, but each individual
// round is sequential and self-contained").
package experiment

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"beamlearn/ast"
	"beamlearn/config"
	"beamlearn/round"
)

// Case names one independent unit of batch work: a set of program
// groups, the beam configuration to run them under, and how many
// rounds to iterate.
type Case[O ast.Op] struct {
	Name   string
	Input  round.Input[O]
	Config config.Beam
	Rounds int
}

// Result pairs a Case's name with its outcome. Err is set when the
// case's round driver hit an internal invariant violation; per
// spec.md §7, that is fatal to the case but never aborts the rest of
// the batch.
type Result[O ast.Op] struct {
	Name      string
	Summaries []round.Summary[O]
	Err       error
}

// RunBatch runs every case in cases concurrently, bounded to
// runtime.GOMAXPROCS(0) in flight at once, each on its own
// round.Driver and e-graph so no mutable state is shared between
// cases. Results are returned in the same order as cases regardless of
// completion order.
func RunBatch[O ast.Op](teach ast.Teachable[O], listOp O, combinators []O, cases []Case[O]) []Result[O] {
	results := make([]Result[O], len(cases))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, c := range cases {
		g.Go(func() error {
			d := round.NewDriver[O](teach, listOp, combinators, c.Config, nil)
			summaries, err := round.Rounds[O](d, c.Rounds, c.Input)
			results[i] = Result[O]{Name: c.Name, Summaries: summaries, Err: err}
			return nil
		})
	}
	_ = g.Wait() // every case reports its own error in Result.Err; nothing ever fails the group itself

	return results
}
