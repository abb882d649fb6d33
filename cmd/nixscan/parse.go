package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nixscan/internal/diag"
	"nixscan/internal/driver"
	"nixscan/internal/project"
	"nixscan/internal/report"
	"nixscan/internal/syntax"
)

var errParseFailed = errors.New("file has syntax errors")

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.nix",
	Short: "Parse a Nix file and dump its syntax tree",
	Long: `Parse builds the lossless syntax tree of a file, prints it and reports
syntax diagnostics. --format short prints one diagnostic per line for editors;
json and yaml print the diagnostics and file facts`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|source|short|json|yaml)")
	parseCmd.Flags().Bool("trivia", false, "include trivia tokens in the tree dump")
}

type parseSummary struct {
	Path        string              `json:"path" yaml:"path"`
	Kind        string              `json:"kind" yaml:"kind"`
	Digest      string              `json:"digest" yaml:"digest"`
	HasErrors   bool                `json:"has_errors" yaml:"has_errors"`
	Imports     []string            `json:"imports,omitempty" yaml:"imports,omitempty"`
	Diagnostics []report.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withTrivia, err := cmd.Flags().GetBool("trivia")
	if err != nil {
		return fmt.Errorf("failed to get trivia flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Parse(filePath, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	sf := result.File
	diags := report.Diagnostics([]*syntax.SourceFile{sf}, nil)

	out := cmd.OutOrStdout()
	switch format {
	case "tree", "source":
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		if err := report.WriteDiagnostics(cmd.ErrOrStderr(), diags, colorEnabled(colorFlag, os.Stderr)); err != nil {
			return err
		}
		if format == "source" {
			_, err = io.WriteString(out, sf.Tree.String())
		} else {
			_, err = io.WriteString(out, sf.Tree.Dump(sf.Tree.Root, withTrivia))
		}
		if err != nil {
			return err
		}
	case "short":
		if text := diag.FormatShort(result.Bag.Items(), result.FileSet, true); text != "" {
			if _, err := fmt.Fprintln(out, text); err != nil {
				return err
			}
		}
	case "json", "yaml":
		summary := summarizeParse(sf, diags)
		if format == "json" {
			err = report.WriteJSON(out, summary)
		} else {
			err = report.WriteYAML(out, summary)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if sf.HasErrors() {
		return errParseFailed
	}
	return nil
}

func summarizeParse(sf *syntax.SourceFile, diags []report.Diagnostic) parseSummary {
	node := project.NewFileNode(sf)
	s := parseSummary{
		Path:        node.Path,
		Kind:        node.Kind.String(),
		Digest:      node.Digest.String(),
		HasErrors:   node.HasErrors,
		Diagnostics: diags,
	}
	for _, e := range project.ExtractDependencies(sf) {
		s.Imports = append(s.Imports, e.Target)
	}
	return s
}
