package cmd

import (
	"fmt"

	"github.com/QuEraComputing/kirin/internal/toydialect"
	"github.com/QuEraComputing/kirin/pkg/absint"
	"github.com/QuEraComputing/kirin/pkg/dialect"
	"github.com/QuEraComputing/kirin/pkg/interpreter"
	"github.com/QuEraComputing/kirin/pkg/ir"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/spf13/cobra"
)

var runBound int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a built-in example pipeline and print its result",
}

var runCounterLoopCmd = &cobra.Command{
	Use:   "counter-loop",
	Short: "Run the concrete counting-loop example to completion (spec scenario 1)",
	RunE:  runCounterLoop,
}

var runIntervalCmd = &cobra.Command{
	Use:   "interval",
	Short: "Run the interval-widening abstract interpretation over the counting loop (spec scenario 2)",
	RunE:  runInterval,
}

var runMixedStageCmd = &cobra.Command{
	Use:   "mixed-stage",
	Short: "Run the cross-stage call example (spec scenario 5)",
	RunE:  runMixedStage,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runCounterLoopCmd)
	runCmd.AddCommand(runIntervalCmd)
	runCmd.AddCommand(runMixedStageCmd)

	runCmd.PersistentFlags().IntVar(&runBound, "bound", 100, "loop bound for counter-loop and interval")
}

func runCounterLoop(cmd *cobra.Command, args []string) error {
	p := pipeline.New()
	stageID, entry, err := toydialect.BuildCounterLoop(p, "counter-loop", toydialect.IntOps{}, runBound)
	if err != nil {
		return fmt.Errorf("building counter-loop: %w", err)
	}

	stack := interpreter.New[int, struct{}](p.StoreFor).WithFuel(runBound * 10)
	cont, err := stack.RunFromBlock(stageID, entry, nil)
	if err != nil {
		return fmt.Errorf("running counter-loop: %w", err)
	}
	ret, ok := cont.(dialect.Return[int])
	if !ok {
		return fmt.Errorf("expected a final Return, got %T", cont)
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "bound=%d\n", runBound)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "result: %d\n", ret.Value)
	return nil
}

func runInterval(cmd *cobra.Command, args []string) error {
	p := pipeline.New()
	stageID, entry, err := toydialect.BuildCounterLoop(p, "interval", toydialect.IntervalOps{}, runBound)
	if err != nil {
		return fmt.Errorf("building interval example: %w", err)
	}

	store, ok := p.StoreFor(stageID)
	if !ok {
		return fmt.Errorf("no store for stage %v", stageID)
	}
	headers, err := absint.LoopHeadersByBackedge(store, entry)
	if err != nil {
		return fmt.Errorf("finding loop headers: %w", err)
	}

	ai := absint.New[toydialect.Interval](
		p.StoreFor,
		absint.LoopHeaders{IsLoopHeader: func(b ir.BlockID) bool { return headers[b] }},
		1000, 2,
	)
	if err := ai.Seed(stageID, entry, nil); err != nil {
		return fmt.Errorf("seeding abstract interpreter: %w", err)
	}
	result, err := ai.Run(stageID)
	if err != nil {
		return fmt.Errorf("running abstract interpreter: %w", err)
	}

	for block, values := range result.BlockEntries {
		for value, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "block %v, value %v: %s\n", block, value, v.String())
		}
	}
	return nil
}

func runMixedStage(cmd *cobra.Command, args []string) error {
	p := pipeline.New()
	callerID, callerEntry, err := toydialect.BuildMixedStageRecursion(p)
	if err != nil {
		return fmt.Errorf("building mixed-stage example: %w", err)
	}

	stack := interpreter.New[int, struct{}](p.StoreFor).WithFuel(1000).WithMaxDepth(16)
	cont, err := stack.RunFromBlock(callerID, callerEntry, nil)
	if err != nil {
		return fmt.Errorf("running mixed-stage example: %w", err)
	}
	ret, ok := cont.(dialect.Return[int])
	if !ok {
		return fmt.Errorf("expected a final Return, got %T", cont)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "result: %d\n", ret.Value)
	return nil
}

// buildMixedStagePipeline builds the two-stage cross-stage-call example
// used by "pipeline graph mixed-stage".
func buildMixedStagePipeline() (*pipeline.Pipeline, error) {
	p := pipeline.New()
	if _, _, err := toydialect.BuildMixedStageRecursion(p); err != nil {
		return nil, err
	}
	return p, nil
}
