// Package round implements one round of library-learning beam
// experimentation — build an e-graph from a set of program groups, run
// domain-specific rewrites to a fixed point, discover library
// candidates by anti-unification, run a bounded beam search over which
// of them to keep, then lift and extract the result — and the
// multi-round driver that feeds one round's lifted output into the
// next, grounded on the original `beam_experiment.rs`'s `run` method
// and `Experiment::total_rounds`/`Rounds` composition.
package round

import (
	"sort"
	"time"

	"github.com/tliron/commonlog"

	"beamlearn/antiunify"
	"beamlearn/ast"
	"beamlearn/config"
	"beamlearn/costset"
	"beamlearn/diag"
	"beamlearn/egraph"
	"beamlearn/extract"
	"beamlearn/lift"
)

// LibDef names one library chosen by a round: its id, the closed
// expression it abstracts, the arity (number of de Bruijn-bound
// parameters) it was learned with, and how many call sites reference
// it in the round's final extracted expression.
type LibDef[O ast.Op] struct {
	ID         int
	Body       ast.Expr[O]
	Arity      int
	UsageCount int
}

// Summary reports one round's outcome.
type Summary[O ast.Op] struct {
	InitialCost           int
	FinalCost             int
	CompressionRatio      float64
	SpaceSavingPercentage float64
	Expr                  ast.Expr[O]
	ChosenLibs            []LibDef[O]
	StopReason            egraph.StopReason
}

// Input is one round's input: a list of program groups (each a
// non-empty set of expressions the anti-unifier should treat as
// already equivalent, unioned into one e-class) plus the
// domain-specific rewrites to saturate with before learning.
type Input[O ast.Op] struct {
	Groups [][]ast.Expr[O]
	DSRs   []egraph.Rewrite[O]
}

// Driver holds everything a round needs that doesn't change between
// rounds or input groups: the operator alphabet's binding view, the
// list-combinator operator used to union program roots under one
// synthetic node, the combinator alphabet lift rules are generated
// for, and the tunable beam parameters.
type Driver[O ast.Op] struct {
	teach       ast.Teachable[O]
	listOp      O
	combinators []O
	cfg         config.Beam
	log         commonlog.Logger
}

// NewDriver builds a round driver. combinators is the set of
// variadic/n-ary operators lib-lifting rules are generated for beyond
// the ordinary lambda/let/lib commuting rules; it must include listOp.
// A nil logger defaults to commonlog.GetLogger("beamlearn").
func NewDriver[O ast.Op](teach ast.Teachable[O], listOp O, combinators []O, cfg config.Beam, log commonlog.Logger) *Driver[O] {
	if log == nil {
		log = commonlog.GetLogger("beamlearn")
	}
	return &Driver[O]{teach: teach, listOp: listOp, combinators: combinators, cfg: cfg, log: log}
}

// Round runs one full round of beam experimentation over input,
// matching the original implementation's run method step for step:
// build the e-graph, saturate with DSRs, compute co-occurrence,
// anti-unify, saturate with the learned library rewrites under the
// beam-search analysis, read the winning LibSel off a synthetic root,
// then lift and extract.
func (d *Driver[O]) Round(input Input[O]) (Summary[O], error) {
	if len(input.Groups) == 0 {
		return Summary[O]{}, diag.New(diag.ErrEmptyFrontier, "round", "no program groups given")
	}

	analysis := costset.New(costset.Config{BeamSize: d.cfg.BeamSize, InterBeamSize: d.cfg.InterBeamSize, ExtraPOR: d.cfg.ExtraPOR})
	g := egraph.New[O](d.teach, analysis)

	roots := make([]ast.ClassID, 0, len(input.Groups))
	initialCost := 1 // the synthetic list root itself, per the original's "+1 for root node"
	for _, group := range input.Groups {
		var groupRoot ast.ClassID
		for i, e := range group {
			id := g.AddExpr(e)
			initialCost += e.Size()
			if i == 0 {
				groupRoot = id
			} else {
				g.Union(groupRoot, id)
			}
		}
		g.Rebuild()
		roots = append(roots, groupRoot)
	}

	d.log.Debugf("round: starting cost %d, %d e-classes", initialCost, g.NumClasses())
	d.log.Debugf("round: running %d DSRs", len(input.DSRs))

	dsrReason := egraph.Saturate(g, input.DSRs, egraph.Limits{TimeLimit: d.cfg.TimeLimit})
	if dsrReason != egraph.StopSaturated {
		d.log.Warningf("round: DSR saturation stopped early: %s", dsrReason)
	}

	d.log.Debugf("round: running co-occurrence analysis")
	co := egraph.BuildCoOccurrence(g, roots)

	d.log.Debugf("round: running anti-unification")
	auCfg := antiunify.Config{MaxArity: d.cfg.MaxArity, LearnConstants: d.cfg.LearnConstants}
	learned := antiunify.Learn(g, d.teach, co, auCfg)
	d.log.Debugf("round: found %d candidate patterns", learned.Len())

	libRewrites := learned.Rewrites()
	if d.cfg.LPS > 0 && len(libRewrites) > d.cfg.LPS {
		sort.SliceStable(libRewrites, func(i, j int) bool {
			return libRewrites[i].Search.NumHoles() < libRewrites[j].Search.NumHoles()
		})
		libRewrites = libRewrites[:d.cfg.LPS]
	}

	d.log.Debugf("round: saturating with %d library rewrites", len(libRewrites))
	libReason := egraph.Saturate(g, libRewrites, egraph.Limits{
		IterLimit: 1,
		NodeLimit: d.cfg.NodeLimit,
		TimeLimit: d.cfg.TimeLimit,
	})
	d.log.Debugf("round: stop reason %s, %d e-classes", libReason, g.NumClasses())

	rootNode := ast.Node[O]{Op: d.listOp, Children: roots}
	root := g.AddNode(rootNode)
	g.Rebuild()

	cs := g.Data(root)
	if cs.Len() == 0 {
		return Summary[O]{}, diag.New(diag.ErrEmptyFrontier, "round", "root cost set is empty after beam saturation")
	}
	best := cs.Best()

	chosen := make([]extract.LibDef[O], 0, len(best.Libs))
	chosenRewrites := make([]egraph.Rewrite[O], 0, len(best.Libs))
	reportLibs := make([]LibDef[O], 0, len(best.Libs))
	for _, lc := range best.Libs {
		name := egraph.LibIdentName(lc.ID)
		chosen = append(chosen, extract.LibDef[O]{ID: lc.ID, Name: name})
		for _, r := range libRewrites {
			if r.Name == name {
				chosenRewrites = append(chosenRewrites, r)
			}
		}
		if p, ok := learned.Pattern(lc.ID); ok {
			reportLibs = append(reportLibs, LibDef[O]{ID: int(lc.ID), Body: patternToExpr(d.teach, p), Arity: p.NumHoles()})
		}
	}

	d.log.Debugf("round: chose %d libraries, upper-bound cost %d", len(chosen), best.FullCost)

	liftReason := lift.Saturate(g, d.teach, d.combinators, lift.DefaultConfig())
	if liftReason != egraph.StopSaturated {
		d.log.Warningf("round: lift saturation stopped early: %s", liftReason)
	}

	ex := extract.New(g, d.teach, chosen)
	finalExpr, finalCost := ex.Extract(root)

	usage := extract.UsageCounts(d.teach, finalExpr, chosen)
	for i := range reportLibs {
		reportLibs[i].UsageCount = usage[costset.LibID(reportLibs[i].ID)]
	}

	compression := float64(finalCost) / float64(initialCost)
	spaceSaving := 1 - compression

	d.log.Infof("round: cost %d -> %d (compression ratio %.3f)", initialCost, finalCost, compression)

	return Summary[O]{
		InitialCost:           initialCost,
		FinalCost:             finalCost,
		CompressionRatio:      compression,
		SpaceSavingPercentage: spaceSaving * 100,
		Expr:                  finalExpr,
		ChosenLibs:            reportLibs,
		StopReason:            libReason,
	}, nil
}

// Rounds runs the pipeline n times, feeding each round's lifted output
// as the next round's sole program group, retaining the earlier,
// better-costed summary whenever a round would otherwise regress final
// cost (spec.md's monotonicity guarantee).
func Rounds[O ast.Op](d *Driver[O], n int, input Input[O]) ([]Summary[O], error) {
	summaries := make([]Summary[O], 0, n)
	current := input
	var best Summary[O]
	haveBest := false

	for i := 0; i < n; i++ {
		start := time.Now()
		s, err := d.Round(current)
		if err != nil {
			return summaries, err
		}
		d.log.Debugf("round %d: elapsed %s", i, time.Since(start))

		if haveBest && s.FinalCost > best.FinalCost {
			d.log.Warningf("round %d: cost regressed (%d > %d), retaining previous round's result", i, s.FinalCost, best.FinalCost)
			s = best
		}
		best = s
		haveBest = true
		summaries = append(summaries, s)

		current = Input[O]{Groups: [][]ast.Expr[O]{{s.Expr}}, DSRs: input.DSRs}
	}

	return summaries, nil
}

// patternToExpr concretizes a learned library's searcher pattern into
// a closed, human-readable body expression for Summary reporting, the
// same way antiunify's own renumberToVars closes a searcher pattern
// into the library's actual installed body: each hole becomes the de
// Bruijn index node it's bound to inside the library's value.
func patternToExpr[O ast.Op](teach ast.Teachable[O], p egraph.Pattern[O]) ast.Expr[O] {
	if p.IsHole {
		return ast.Leaf(teach.MakeIndex(int(p.Hole)))
	}
	children := make([]ast.Expr[O], len(p.Children))
	for i, c := range p.Children {
		children[i] = patternToExpr(teach, c)
	}
	return ast.NewExpr(p.Op, children...)
}
