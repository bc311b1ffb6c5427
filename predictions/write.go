package predictions

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej/analysis"
	"github.com/sbinet/npyio"
)

// WriteVector writes a one-dimensional float64 .npy array.
func WriteVector(w io.Writer, v []float64) error {
	if v == nil {
		v = []float64{}
	}
	if err := npyio.Write(w, v); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// WriteArray writes a as a little-endian float64 .npy (format 1.0) array of
// any rank. npyio.Write can only describe vectors and matrices.
func WriteArray(w io.Writer, a analysis.Array) error {
	if err := writeHeader(w, "<f8", a.Shape); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, a.Data); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// WriteUint8 is WriteArray for raw bytes such as image pixels.
func WriteUint8(w io.Writer, shape []int, data []uint8) error {
	if shapeLen(shape) != len(data) {
		return &analysis.ShapeError{Shape: shape, Len: len(data)}
	}
	if err := writeHeader(w, "|u1", shape); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeHeader(w io.Writer, descr string, shape []int) error {
	dims := make([]string, len(shape))
	for i, v := range shape {
		dims[i] = fmt.Sprint(v)
	}
	tuple := strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}

	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, tuple)

	// magic(6) + version(2) + header length(2) + dict + padding + newline
	// must be a multiple of 64.
	total := len(npyMagic) + 4 + len(dict) + 1
	if rem := total % 64; rem != 0 {
		dict += strings.Repeat(" ", 64-rem)
	}
	dict += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return pfx.Err(err)
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return pfx.Err(err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(dict))); err != nil {
		return pfx.Err(err)
	}
	if _, err := io.WriteString(w, dict); err != nil {
		return pfx.Err(err)
	}

	return nil
}
