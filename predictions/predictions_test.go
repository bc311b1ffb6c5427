package predictions

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/uncrej/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func npyBytes(t *testing.T, data []float64, shape ...int) []byte {
	t.Helper()

	a, err := analysis.NewArray(data, shape...)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArray(&buf, a))
	require.Zero(t, (buf.Len()-len(data)*8)%64, "header must be 64-byte aligned")

	return buf.Bytes()
}

func writeFile(t *testing.T, name string, contents []byte) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, contents, 0o644))
	return p
}

var stackData = []float64{
	0.9, 0.1, 0.8, 0.2, 0.7, 0.3,
	0.4, 0.6, 0.2, 0.8, 0.3, 0.7,
}

func TestReadArrayRoundTrip(t *testing.T) {
	a, err := ReadArray(bytes.NewReader(npyBytes(t, stackData, 2, 3, 2)))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 2}, a.Shape)
	assert.Equal(t, stackData, a.Data)
}

func TestReadArrayRejectsGarbage(t *testing.T) {
	_, err := ReadArray(strings.NewReader("not an npy file"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	p := writeFile(t, "stack.npy", npyBytes(t, stackData, 2, 3, 2))

	pred, err := Load(p, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, pred.Samples())
	assert.Equal(t, 3, pred.Draws())
	assert.Equal(t, 2, pred.Classes())
	assert.Equal(t, []int{0, 1}, pred.Label)
	assert.InDelta(t, 0.8, pred.Mean.At(0, 0), 1e-12)
	assert.InDelta(t, 0.7, pred.Mean.At(1, 1), 1e-12)
}

func TestLoadGzipped(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(npyBytes(t, stackData, 2, 3, 2))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	pred, err := Load(writeFile(t, "stack.npy.gz", gz.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, pred.Label)
}

func TestLoadSingleDraw(t *testing.T) {
	p := writeFile(t, "mean.npy", npyBytes(t, []float64{0.3, 0.7, 0.6, 0.4}, 2, 2))

	pred, err := Load(p, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 2}, pred.Stack.Shape)
	assert.Equal(t, []int{1, 0}, pred.Label)
}

func TestLoadWrongRank(t *testing.T) {
	p := writeFile(t, "vec.npy", npyBytes(t, []float64{0.3, 0.7}, 2))

	_, err := Load(p, nil)
	var rankErr *analysis.RankError
	require.True(t, errors.As(err, &rankErr))
	assert.Equal(t, 1, rankErr.Got)
}

func TestLoadPositive(t *testing.T) {
	// Two samples, two draws of the positive-class probability
	p := writeFile(t, "pos.npy", npyBytes(t, []float64{0.9, 0.7, 0.2, 0.4}, 2, 2))

	pred, err := LoadPositive(p, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 2}, pred.Stack.Shape)
	assert.InDelta(t, 0.1, pred.Stack.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 0.9, pred.Stack.At(0, 0, 1), 1e-12)
	assert.Equal(t, []int{1, 0}, pred.Label)
}

func TestLoadNPZ(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, contents := range map[string][]byte{
		"x_test.npy": npyBytes(t, stackData, 2, 3, 2),
		"y_test.npy": npyBytes(t, []float64{0, 1}, 2),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(contents)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	p := writeFile(t, "preds.npz", buf.Bytes())

	a, err := LoadNPZ(p, "x_test", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 2}, a.Shape)

	z, err := OpenNPZ(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, []string{"x_test", "y_test"}, z.Names())

	_, err = z.Array("missing")
	assert.Error(t, err)
}

func TestReadLabels(t *testing.T) {
	for _, v := range []struct {
		name     string
		input    string
		expected []int
	}{
		{"one per line", "0\n1\n1\n2\n", []int{0, 1, 1, 2}},
		{"header and tabs", "sample\tlabel\nA\t3\nB\t0\n", []int{3, 0}},
		{"float labels", "id,y\n1,1.0\n2,0.0\n", []int{1, 0}},
		{"comments", "# exported\n5\n6\n", []int{5, 6}},
	} {
		t.Run(v.name, func(t *testing.T) {
			labels, err := ReadLabels(strings.NewReader(v.input))
			require.NoError(t, err)
			assert.Equal(t, v.expected, labels)
		})
	}
}

func TestReadLabelsNonInteger(t *testing.T) {
	_, err := ReadLabels(strings.NewReader("0\n0.5\n"))
	assert.Error(t, err)

	_, err = ReadLabels(strings.NewReader("0\nx\n"))
	assert.Error(t, err)
}

func TestLoadLabelsNPY(t *testing.T) {
	p := writeFile(t, "labels.npy", npyBytes(t, []float64{2, 0, 1}, 3))

	labels, err := LoadLabels(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, labels)
}

func TestWriteVector(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVector(&buf, []float64{1.5, -2}))

	a, err := ReadArray(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, a.Shape)
	assert.Equal(t, []float64{1.5, -2}, a.Data)
}
