package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nixscan/internal/report"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [dir|file]",
	Short: "Show the import graph of a Nix project",
	Long: `Graph parses the project and prints its file dependency graph: cycles,
imports that do not resolve, files nothing imports and the build order`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

var graphScan scanFlags

func init() {
	graphScan.register(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	plan, err := prepareScan(cmd, args, &graphScan)
	if err != nil {
		return err
	}
	plan.opts.SkipAnalysis = true

	res, err := runScan(cmd.Context(), "Linking", plan.paths, plan.opts, plan.tui)
	if err != nil {
		return fmt.Errorf("graph failed: %w", err)
	}
	doc := report.FromScan(res, report.Options{
		Root:   plan.root,
		Graph:  true,
		Timing: plan.opts.Timings,
	})
	return report.Render(cmd.OutOrStdout(), plan.cfg.Output.Format, doc, report.TextOptions{
		Color: colorEnabled(plan.cfg.Output.Color, os.Stdout),
		Quiet: plan.quiet,
	})
}
