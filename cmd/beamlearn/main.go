// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"beamlearn/ast"
	"beamlearn/config"
	"beamlearn/listlang"
	"beamlearn/round"
	"beamlearn/surface"
)

func main() {
	beamSize := flag.Int("beam", config.Default().BeamSize, "final beam size")
	interBeamSize := flag.Int("inter-beam", config.Default().InterBeamSize, "inter-step beam size")
	maxArity := flag.Int("max-arity", config.Default().MaxArity, "maximum library arity")
	learnConstants := flag.Bool("learn-constants", config.Default().LearnConstants, "allow zero-hole (constant) library candidates")
	rounds := flag.Int("rounds", 1, "number of learning rounds")
	timeout := flag.Duration("timeout", config.Default().TimeLimit, "per-saturation time limit")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Println("Usage: beamlearn [-beam N] [-inter-beam N] [-max-arity N] [-learn-constants] [-rounds N] [-timeout D] <file.bl>...")
		os.Exit(1)
	}

	commonlog.Configure(1, nil)

	cfg := config.Default()
	cfg.BeamSize = *beamSize
	cfg.InterBeamSize = *interBeamSize
	cfg.MaxArity = *maxArity
	cfg.LearnConstants = *learnConstants
	cfg.TimeLimit = *timeout

	groups := make([][]ast.Expr[listlang.Op], 0, len(paths))
	for _, path := range paths {
		e, err := surface.ParseFile(path)
		if err != nil {
			color.Red("failed to parse %s: %s", path, err)
			os.Exit(1)
		}
		groups = append(groups, programGroup(e))
	}

	teach := listlang.Teachable{}
	d := round.NewDriver[listlang.Op](teach, listlang.List(), []listlang.Op{listlang.List()}, cfg, commonlog.GetLogger("beamlearn"))
	input := round.Input[listlang.Op]{Groups: groups, DSRs: listlang.StandardDSRs().Rewrites()}

	summaries, err := round.Rounds[listlang.Op](d, *rounds, input)
	if err != nil {
		color.Red("round failed: %s", err)
		os.Exit(1)
	}

	for i, s := range summaries {
		printSummary(i, s)
	}

	if len(summaries) > 0 {
		fmt.Println()
		fmt.Println(surface.Print(summaries[len(summaries)-1].Expr))
	}
}

// programGroup turns one file's parsed expression into a program
// group: its top-level list siblings if the surface form is a list
// node (treated as one equivalence-unioned group), otherwise the
// whole expression as the group's sole member.
func programGroup(e ast.Expr[listlang.Op]) []ast.Expr[listlang.Op] {
	if e.Op.IsListOp() {
		return e.Children
	}
	return []ast.Expr[listlang.Op]{e}
}

func printSummary(roundNum int, s round.Summary[listlang.Op]) {
	color.Cyan("round %d:", roundNum)
	fmt.Printf("  initial cost: %d\n", s.InitialCost)
	fmt.Printf("  final cost:   %d\n", s.FinalCost)

	if s.CompressionRatio < 1 {
		color.Green("  compression ratio: %.3f (%.1f%% space saved)", s.CompressionRatio, s.SpaceSavingPercentage)
	} else {
		color.Yellow("  compression ratio: %.3f", s.CompressionRatio)
	}

	if s.StopReason.String() != "Saturated" {
		color.Yellow("  stop reason: %s (resource limit reached before a fixed point)", s.StopReason)
	}

	for _, lib := range s.ChosenLibs {
		fmt.Printf("  lib f%d (arity %d, used %d×): %s\n", lib.ID, lib.Arity, lib.UsageCount, surface.Print(lib.Body))
	}
}
