// Package predictions loads precomputed stochastic predictions and the true
// labels they are evaluated against. Files may be local or gs:// paths, and
// may be compressed.
package predictions

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej"
	"github.com/carbocation/uncrej/analysis"
	"gonum.org/v1/gonum/mat"
)

// Predictions bundles a probability stack with its mean prediction and the
// predicted label of every sample.
type Predictions struct {
	Stack analysis.Array
	Mean  *mat.Dense
	Label []int
}

// Samples is the number of samples in the stack.
func (p Predictions) Samples() int { return p.Stack.Len() }

// Draws is the number of stochastic predictions per sample.
func (p Predictions) Draws() int { return p.Stack.Shape[1] }

// Classes is the number of classes.
func (p Predictions) Classes() int { return p.Stack.Shape[2] }

// FromArray builds Predictions from a [sample, draw, class] stack, or from a
// [sample, class] array which is treated as a single draw per sample.
func FromArray(a analysis.Array) (Predictions, error) {
	switch a.Rank() {
	case 3:
	case 2:
		a = analysis.Array{Shape: []int{a.Shape[0], 1, a.Shape[1]}, Data: a.Data}
	default:
		return Predictions{}, &analysis.RankError{Op: "FromArray", Want: 3, Got: a.Rank()}
	}

	mean, label, err := analysis.MeanLabel(a)
	if err != nil {
		return Predictions{}, err
	}

	return Predictions{Stack: a, Mean: mean, Label: label}, nil
}

// Load reads an .npy file of stacked predictions. See FromArray for the
// accepted shapes.
func Load(path string, client *storage.Client) (Predictions, error) {
	a, err := LoadArray(path, client)
	if err != nil {
		return Predictions{}, err
	}

	return FromArray(a)
}

// LoadPositive reads a [sample, draw] .npy file of positive-class
// probabilities from a binary classifier and expands it to a two-class stack.
func LoadPositive(path string, client *storage.Client) (Predictions, error) {
	a, err := LoadArray(path, client)
	if err != nil {
		return Predictions{}, err
	}

	stack, err := analysis.PosNegProbs(a)
	if err != nil {
		return Predictions{}, err
	}

	return FromArray(stack)
}

// LoadArray reads a single .npy array, decompressing it if needed.
func LoadArray(path string, client *storage.Client) (analysis.Array, error) {
	f, _, err := uncrej.MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return analysis.Array{}, err
	}
	defer f.Close()

	rc, _, err := uncrej.MaybeDecompress(f)
	if err != nil {
		return analysis.Array{}, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	defer rc.Close()

	a, err := ReadArray(rc)
	if err != nil {
		return analysis.Array{}, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return a, nil
}

// LoadNPZ reads the named array from an .npz archive.
func LoadNPZ(path, name string, client *storage.Client) (analysis.Array, error) {
	f, size, err := uncrej.MaybeOpenReaderAtFromGoogleStorage(path, client)
	if err != nil {
		return analysis.Array{}, err
	}
	defer f.Close()

	z, err := OpenNPZ(f, size)
	if err != nil {
		return analysis.Array{}, err
	}

	return z.Array(name)
}

// LoadLabels reads integer class labels. Either an .npy vector, or a
// delimited text file with one sample per row, is accepted; for text files
// the label is the last column and a non-numeric first row is taken to be a
// header.
func LoadLabels(path string, client *storage.Client) ([]int, error) {
	f, _, err := uncrej.MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, _, err := uncrej.MaybeDecompress(f)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	labels, err := ReadLabels(rc)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return labels, nil
}

// ReadLabels is LoadLabels for an already-open, uncompressed stream.
func ReadLabels(r io.Reader) ([]int, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(npyMagic))

	if IsNPY(head) {
		a, err := ReadArray(br)
		if err != nil {
			return nil, err
		}
		if a.Rank() != 1 {
			return nil, &analysis.RankError{Op: "ReadLabels", Want: 1, Got: a.Rank()}
		}
		return toLabels(a.Data)
	}

	delim, rest, err := uncrej.PeekDelimiter(br, 4096)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(rest)
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	values := make([]float64, 0)
	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if len(row) == 0 {
			continue
		}

		field := strings.TrimSpace(row[len(row)-1])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil && i == 0 {
			// Header
			continue
		} else if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		values = append(values, v)
	}

	return toLabels(values)
}

func toLabels(values []float64) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("label %d (%v) is not an integer class id", i, v)
		}
		out[i] = int(v)
	}

	return out, nil
}
