package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nixscan/internal/analysis"
	"nixscan/internal/driver"
	"nixscan/internal/report"
	"nixscan/internal/store"
)

// errFailOn is returned when findings reach the --fail-on threshold.
var errFailOn = errors.New("findings at or above the failure threshold")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] [dir|file]",
	Short: "Run the security, performance and dead code analyzers",
	Long: `Analyze discovers *.nix files under the target (default: current directory),
parses them in parallel, links imports into a dependency graph and reports findings`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeScan        scanFlags
	analyzeAnalyzers   []string
	analyzeMinSeverity string
	analyzeFailOn      string
	analyzeGraph       bool
	analyzeDB          string
)

func init() {
	analyzeScan.register(analyzeCmd)
	analyzeCmd.Flags().StringSliceVar(&analyzeAnalyzers, "analyzers", nil, "analyzers to run (security,performance,deadcode)")
	analyzeCmd.Flags().StringVar(&analyzeMinSeverity, "min-severity", "", "hide findings below this level (low|medium|high|critical)")
	analyzeCmd.Flags().StringVar(&analyzeFailOn, "fail-on", "", "exit with status 2 when a finding reaches this level")
	analyzeCmd.Flags().BoolVar(&analyzeGraph, "graph", false, "include the dependency graph in the report")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "record the run in this SQLite database and compare with the previous one")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	plan, err := prepareScan(cmd, args, &analyzeScan)
	if err != nil {
		return err
	}
	cfg := &plan.cfg
	if cmd.Flags().Changed("analyzers") {
		cfg.Analyze.Analyzers = analyzeAnalyzers
	}
	if cmd.Flags().Changed("min-severity") {
		cfg.Analyze.MinSeverity = analyzeMinSeverity
	}
	if cmd.Flags().Changed("fail-on") {
		cfg.Analyze.FailOn = analyzeFailOn
	}
	if cmd.Flags().Changed("db") {
		cfg.Store.Path = analyzeDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	analyzers, err := driver.AnalyzersByName(cfg.Analyze.Analyzers)
	if err != nil {
		return err
	}
	plan.opts.Analyzers = analyzers

	started := time.Now()
	res, err := runScan(cmd.Context(), "Analyzing", plan.paths, plan.opts, plan.tui)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	doc := report.FromScan(res, report.Options{
		Root:        plan.root,
		MinSeverity: cfg.MinSeverity(),
		Graph:       analyzeGraph,
		Timing:      plan.opts.Timings,
	})
	out := cmd.OutOrStdout()
	textOpts := report.TextOptions{
		Color: colorEnabled(cfg.Output.Color, os.Stdout),
		Width: terminalWidth(os.Stdout),
		Quiet: plan.quiet,
	}
	if err := report.Render(out, cfg.Output.Format, doc, textOpts); err != nil {
		return err
	}

	if cfg.Store.Path != "" {
		if err := recordRun(cmd.Context(), cmd.ErrOrStderr(), cfg.Store.Path, plan, res, started); err != nil {
			return err
		}
	}

	if threshold, ok := cfg.FailOn(); ok {
		if n := countAtLeast(res.Findings, threshold); n > 0 {
			return fmt.Errorf("%w: %d %s+ finding(s)", errFailOn, n, threshold)
		}
	}
	return nil
}

func countAtLeast(findings []analysis.Finding, min analysis.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity >= min {
			n++
		}
	}
	return n
}

// recordRun stores the run and prints what changed since the previous run
// of the same root.
func recordRun(ctx context.Context, w io.Writer, dbPath string, plan *scanPlan, res *driver.ScanResult, started time.Time) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	root, err := filepath.Abs(plan.root)
	if err != nil {
		root = plan.root
	}
	prev, err := st.LatestRun(ctx, root)
	if err != nil {
		return err
	}

	run := &store.Run{
		Root:        root,
		StartedAt:   started,
		Files:       res.Summary.Parsed,
		Failed:      res.Summary.Failed,
		WithErrors:  res.Summary.WithErrors,
		Findings:    len(res.Findings),
		GraphDigest: res.Graph.Digest().String(),
		DurationMS:  res.Timing.TotalMS,
	}
	id, err := st.RecordRun(ctx, run, store.FileRecords(res.Graph.Files), res.Findings)
	if err != nil {
		return err
	}
	logger.Info("store.recorded", "db", dbPath, "run", id)

	if prev == nil || plan.quiet {
		return nil
	}
	before, err := st.Findings(ctx, prev.ID)
	if err != nil {
		return err
	}
	added, resolved := store.Diff(before, res.Findings)
	_, err = fmt.Fprintf(w, "run #%d: %d new, %d resolved since run #%d\n", id, len(added), len(resolved), prev.ID)
	if err != nil {
		return err
	}
	for _, f := range added {
		fmt.Fprintf(w, "  + %s:%d %s %s\n", f.File, f.Line, f.Kind, f.Description)
	}
	for _, f := range resolved {
		fmt.Fprintf(w, "  - %s:%d %s %s\n", f.File, f.Line, f.Kind, f.Description)
	}
	return nil
}
