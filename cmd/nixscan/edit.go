package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nixscan/internal/driver"
	"nixscan/internal/edit"
	"nixscan/internal/query"
	"nixscan/internal/syntax"
)

var (
	errNotAttrSet = errors.New("file does not evaluate to an attribute set")
	errNotList    = errors.New("attribute is not a list")
	errUnbound    = errors.New("attribute is not bound")
	errBrokenEdit = errors.New("edit produced invalid Nix")
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Rewrite attributes of a Nix file in place",
	Long: `Edit changes one attribute of a file and writes it back, keeping comments
and formatting around the change. The file must parse without errors`,
}

var (
	editDryRun bool
	editString bool
)

func init() {
	editCmd.PersistentFlags().BoolVarP(&editDryRun, "dry-run", "n", false, "print the result instead of writing the file")

	setCmd := &cobra.Command{
		Use:   "set [flags] file.nix attr.path value",
		Short: "Bind an attribute, replacing its current value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], editOp{kind: opSet, path: args[1], value: args[2], quote: editString})
		},
	}
	setCmd.Flags().BoolVarP(&editString, "string", "s", false, "treat value as a string and quote it")

	rmCmd := &cobra.Command{
		Use:   "rm file.nix attr.path",
		Short: "Remove an attribute binding or inherited name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], editOp{kind: opRemove, path: args[1]})
		},
	}

	appendCmd := &cobra.Command{
		Use:   "append [flags] file.nix attr.path value",
		Short: "Append an element to a list attribute",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], editOp{kind: opAppend, path: args[1], value: args[2], quote: editString})
		},
	}
	appendCmd.Flags().BoolVarP(&editString, "string", "s", false, "treat value as a string and quote it")

	inputCmd := &cobra.Command{
		Use:   "add-input flake.nix name url",
		Short: "Add a flake input",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], editOp{kind: opAddInput, path: args[1], value: args[2]})
		},
	}

	editCmd.AddCommand(setCmd, rmCmd, appendCmd, inputCmd)
}

type opKind uint8

const (
	opSet opKind = iota
	opRemove
	opAppend
	opAddInput
)

type editOp struct {
	kind  opKind
	path  string
	value string
	quote bool
}

func runEdit(cmd *cobra.Command, filePath string, op editOp) error {
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	result, err := driver.Parse(filePath, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}
	if result.File.HasErrors() {
		return fmt.Errorf("%s: %w", filePath, errParseFailed)
	}

	text, err := applyEdit(result.File, op)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	if editDryRun {
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if text == result.File.Text {
		logger.Info("edit.unchanged", "path", filePath)
		return nil
	}
	if err := writeFileAtomic(filePath, []byte(text)); err != nil {
		return err
	}
	logger.Info("edit.written", "path", filePath)
	return nil
}

// applyEdit runs op on a copy of sf's tree and returns the new source. The
// result is reparsed; an edit that breaks the file is rejected.
func applyEdit(sf *syntax.SourceFile, op editOp) (string, error) {
	t := sf.Tree.Clone()
	value := op.value
	if op.quote {
		value = edit.Quote(value)
	}

	var err error
	if op.kind == opAddInput {
		_, err = edit.AddFlakeInput(t, op.path, op.value)
	} else {
		set := query.BodyAttrSet(t, query.RootExpr(t))
		if !set.IsValid() {
			return "", errNotAttrSet
		}
		switch op.kind {
		case opSet:
			_, err = edit.AddAttribute(t, set, op.path, value)
		case opRemove:
			var old syntax.NodeID
			old, err = edit.RemoveAttribute(t, set, op.path)
			if err == nil && !old.IsValid() {
				return "", fmt.Errorf("%w: %s", errUnbound, op.path)
			}
		case opAppend:
			list := query.GetAttributeValue(t, set, op.path)
			if !list.IsValid() {
				return "", fmt.Errorf("%w: %s", errUnbound, op.path)
			}
			list = t.Unparen(list)
			if t.Kind(list) != syntax.KindList {
				return "", fmt.Errorf("%w: %s", errNotList, op.path)
			}
			_, err = edit.AddListElement(t, list, value)
		}
	}
	if err != nil {
		return "", err
	}

	text := t.String()
	check := driver.ParseText(sf.Path, []byte(text), 1)
	if check.File.HasErrors() {
		return "", errBrokenEdit
	}
	return text, nil
}

// writeFileAtomic replaces path through a temp file in the same directory,
// keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
