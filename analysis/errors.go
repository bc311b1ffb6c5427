package analysis

import "fmt"

// RankError is returned when an array does not have the number of dimensions
// an operation requires, e.g. a [sample, class] mean matrix passed where a
// [sample, draw, class] stack is expected.
type RankError struct {
	Op   string
	Want int
	Got  int
}

func (e *RankError) Error() string {
	return fmt.Sprintf("%s: expected an array of rank %d, got rank %d", e.Op, e.Want, e.Got)
}

// ShapeError is returned when an Array's data does not fill its shape.
type ShapeError struct {
	Shape []int
	Len   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape %v does not describe %d values", e.Shape, e.Len)
}

// DomainError is returned when a parameter falls outside the values an
// operation is defined for.
type DomainError struct {
	Param string
	Value interface{}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Value)
}
