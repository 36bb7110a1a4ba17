package algo

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEdge    = errors.New("algo: malformed edge")
	ErrDuplicateEdge    = errors.New("algo: duplicate edge")
	ErrInconsistentPath = errors.New("algo: path uses an edge missing from the graph")
)

// MalformedEdgeError reports the first edge of the input list whose
// endpoints or weights could not be used.
type MalformedEdgeError struct {
	Index  int
	From   string
	To     string
	Field  string
	Value  any
	Reason string
}

func (e *MalformedEdgeError) Error() string {
	return fmt.Sprintf("%v: edge #%d %s→%s field %s=%v: %s",
		ErrMalformedEdge, e.Index, e.From, e.To, e.Field, e.Value, e.Reason)
}

func (e *MalformedEdgeError) Is(target error) bool { return target == ErrMalformedEdge }

type DuplicateEdgeError struct {
	Index int
	From  string
	To    string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("%v: edge #%d %s→%s already defined", ErrDuplicateEdge, e.Index, e.From, e.To)
}

func (e *DuplicateEdgeError) Is(target error) bool { return target == ErrDuplicateEdge }

type InconsistentPathError struct {
	From string
	To   string
}

func (e *InconsistentPathError) Error() string {
	return fmt.Sprintf("%v: %s→%s", ErrInconsistentPath, e.From, e.To)
}

func (e *InconsistentPathError) Is(target error) bool { return target == ErrInconsistentPath }
