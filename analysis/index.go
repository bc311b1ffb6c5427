package analysis

// Concatenation is the result of joining several label arrays end to end
// while remembering where each one came from.
type Concatenation struct {
	// All holds every label, in argument order.
	All []int

	// Source holds the 0-based argument number of each entry in All.
	Source []int

	// Idx holds, for each argument, the positions it occupies in All.
	Idx [][]int
}

// ConcatGetIdx concatenates label arrays from several sources (e.g. an
// in-distribution and an out-of-distribution test set) and records the
// provenance of every position.
func ConcatGetIdx(labels ...[]int) Concatenation {
	n := 0
	for _, v := range labels {
		n += len(v)
	}

	out := Concatenation{
		All:    make([]int, 0, n),
		Source: make([]int, 0, n),
		Idx:    make([][]int, len(labels)),
	}

	for src, v := range labels {
		idx := make([]int, len(v))
		for k := range v {
			idx[k] = len(out.All) + k
			out.Source = append(out.Source, src)
		}
		out.All = append(out.All, v...)
		out.Idx[src] = idx
	}

	return out
}

// IdxCorrect partitions positions by whether the predicted label matches the
// true label. Both outputs are in ascending order.
func IdxCorrect(yTrue, yPred []int) (correct, incorrect []int) {
	mustSameLen(len(yTrue), len(yPred))

	correct = make([]int, 0, len(yTrue))
	incorrect = make([]int, 0)
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct = append(correct, i)
		} else {
			incorrect = append(incorrect, i)
		}
	}

	return correct, incorrect
}

// Subset gathers the entries at idx out of each of the parallel arrays.
func Subset[T any](idx []int, arrays ...[]T) [][]T {
	out := make([][]T, len(arrays))
	for k, ary := range arrays {
		sub := make([]T, len(idx))
		for j, i := range idx {
			sub[j] = ary[i]
		}
		out[k] = sub
	}

	return out
}

// allPositions returns 0..n-1, the index set used when no subset is given.
func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func mustSameLen(lens ...int) {
	for _, v := range lens[1:] {
		if v != lens[0] {
			panic("analysis: slice length mismatch")
		}
	}
}
