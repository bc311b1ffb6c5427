package analysis

import "fmt"

// Array is a dense float64 array of arbitrary rank, stored in row-major
// (C) order the same way a numpy ndarray is laid out on disk. A probability
// stack is an Array of rank 3 indexed [sample, draw, class].
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray validates that data has exactly as many entries as the shape
// implies.
func NewArray(data []float64, shape ...int) (Array, error) {
	a := Array{Shape: append([]int(nil), shape...), Data: data}
	if err := a.validate(); err != nil {
		return Array{}, err
	}

	return a, nil
}

// Rank is the number of dimensions.
func (a Array) Rank() int {
	return len(a.Shape)
}

// Len is the size of the first dimension, or 0 for a rank-0 array.
func (a Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// At returns the element at the given multi-dimensional index.
func (a Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("analysis: %d indices for an array of rank %d", len(idx), len(a.Shape)))
	}

	offset := 0
	for k, i := range idx {
		if i < 0 || i >= a.Shape[k] {
			panic(fmt.Sprintf("analysis: index %d out of range for dimension %d of size %d", i, k, a.Shape[k]))
		}
		offset = offset*a.Shape[k] + i
	}

	return a.Data[offset]
}

func (a Array) validate() error {
	n := 1
	for _, v := range a.Shape {
		if v < 0 {
			return &ShapeError{Shape: a.Shape, Len: len(a.Data)}
		}
		n *= v
	}
	if n != len(a.Data) {
		return &ShapeError{Shape: a.Shape, Len: len(a.Data)}
	}

	return nil
}

// stack is a validated rank-3 view over an Array.
type stack struct {
	samples, draws, classes int
	data                    []float64
}

func asStack(op string, a Array) (stack, error) {
	if a.Rank() != 3 {
		return stack{}, &RankError{Op: op, Want: 3, Got: a.Rank()}
	}
	if err := a.validate(); err != nil {
		return stack{}, err
	}
	if a.Shape[0] > 0 && (a.Shape[1] == 0 || a.Shape[2] == 0) {
		return stack{}, &DomainError{Param: op + " draw and class counts", Value: a.Shape[1:]}
	}

	return stack{
		samples: a.Shape[0],
		draws:   a.Shape[1],
		classes: a.Shape[2],
		data:    a.Data,
	}, nil
}

// draw returns the class distribution of draw d for sample i. The returned
// slice aliases the underlying array and must not be modified.
func (s stack) draw(i, d int) []float64 {
	start := (i*s.draws + d) * s.classes
	return s.data[start : start+s.classes : start+s.classes]
}

// SubsetStack gathers the samples at idx (in that order) into a new stack.
func SubsetStack(a Array, idx []int) (Array, error) {
	s, err := asStack("SubsetStack", a)
	if err != nil {
		return Array{}, err
	}

	width := s.draws * s.classes
	out := make([]float64, 0, len(idx)*width)
	for _, i := range idx {
		out = append(out, s.data[i*width:(i+1)*width]...)
	}

	return Array{Shape: []int{len(idx), s.draws, s.classes}, Data: out}, nil
}
