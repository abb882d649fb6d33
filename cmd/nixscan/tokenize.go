package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nixscan/internal/driver"
	"nixscan/internal/report"
	"nixscan/internal/syntax"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.nix",
	Short: "Tokenize a Nix source file",
	Long:  `Tokenize breaks down a Nix source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	tokenizeCmd.Flags().Bool("trivia", false, "include whitespace and comments")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	// Получаем флаги
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

	// Выполняем токенизацию
	result, err := driver.Tokenize(filePath, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Диагностика лексера идёт в stderr
	if result.Bag.Len() > 0 {
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		sf := &syntax.SourceFile{Path: filePath, File: result.File}
		diags := report.Diagnostics([]*syntax.SourceFile{sf}, result.Bag.Items())
		if err := report.WriteDiagnostics(cmd.ErrOrStderr(), diags, colorEnabled(colorFlag, os.Stderr)); err != nil {
			return err
		}
	}

	return report.WriteTokens(cmd.OutOrStdout(), format, report.Tokens(result.File, result.Tokens, withTrivia))
}
