package edit

import (
	"errors"
	"fmt"

	"nixscan/internal/syntax"
)

var (
	// ErrTypeMismatch is returned when an operation targets a node of the
	// wrong kind, e.g. AddAttribute on a List.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidPath is returned for empty attribute paths or empty segments.
	ErrInvalidPath = errors.New("invalid attribute path")
	// ErrInvalidValue is returned when a value fragment does not parse.
	ErrInvalidValue = errors.New("invalid value")
)

// MutationError describes a failed edit.
type MutationError struct {
	Op string
	// Got is the kind of the node the operation was applied to.
	Got syntax.Kind
	Err error
}

func (e *MutationError) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("%s: %v: got %s node", e.Op, e.Err, e.Got)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func mismatch(op string, t *syntax.Tree, id syntax.NodeID) error {
	return &MutationError{Op: op, Got: t.Kind(id), Err: ErrTypeMismatch}
}

func failed(op string, err error) error {
	return &MutationError{Op: op, Err: err}
}
