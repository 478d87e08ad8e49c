package cmd

import (
	"fmt"

	"github.com/QuEraComputing/kirin/internal/toydialect"
	"github.com/QuEraComputing/kirin/pkg/pipeline"
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Inspect built-in example pipelines",
}

var pipelineGraphCmd = &cobra.Command{
	Use:   "graph [counter-loop|interval|mixed-stage]",
	Short: "Print the stage/lowering graph of a built-in example pipeline, as Graphviz dot",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipelineGraph,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineGraphCmd)
}

func runPipelineGraph(cmd *cobra.Command, args []string) error {
	var p *pipeline.Pipeline
	switch name := args[0]; name {
	case "counter-loop":
		p = pipeline.New()
		if _, _, err := toydialect.BuildCounterLoop(p, "counter-loop", toydialect.IntOps{}, 100); err != nil {
			return fmt.Errorf("building counter-loop pipeline: %w", err)
		}
	case "interval":
		p = pipeline.New()
		if _, _, err := toydialect.BuildCounterLoop(p, "interval", toydialect.IntervalOps{}, 100); err != nil {
			return fmt.Errorf("building interval pipeline: %w", err)
		}
	case "mixed-stage":
		var err error
		p, err = buildMixedStagePipeline()
		if err != nil {
			return fmt.Errorf("building mixed-stage pipeline: %w", err)
		}
	default:
		return fmt.Errorf("unknown example pipeline %q (want counter-loop, interval, or mixed-stage)", name)
	}

	fmt.Println(p.DotGraph())
	return nil
}
