package predictions

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej/analysis"
	"github.com/sbinet/npyio"
)

// npyMagic starts every .npy stream.
var npyMagic = []byte("\x93NUMPY")

// IsNPY reports whether head looks like the start of an .npy stream.
func IsNPY(head []byte) bool {
	return bytes.HasPrefix(head, npyMagic)
}

func openNPY(r io.Reader) (*npyio.Reader, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if nr.Header.Descr.Fortran {
		return nil, pfx.Err(fmt.Errorf("Fortran-ordered arrays are not supported; save with numpy.ascontiguousarray first"))
	}

	return nr, nil
}

func shapeLen(shape []int) int {
	n := 1
	for _, v := range shape {
		n *= v
	}
	return n
}

// ReadArray reads an .npy stream of any real numeric dtype into a float64
// Array with the stored shape.
func ReadArray(r io.Reader) (analysis.Array, error) {
	nr, err := openNPY(r)
	if err != nil {
		return analysis.Array{}, err
	}

	shape := append([]int(nil), nr.Header.Descr.Shape...)
	n := shapeLen(shape)
	out := make([]float64, n)

	// The first character of the descr is the byte order
	kind := strings.TrimLeft(nr.Header.Descr.Type, "<>|=")

	switch kind {
	case "f8":
		err = nr.Read(&out)
	case "f4":
		out, err = readConverted(nr, make([]float32, n), out)
	case "i8":
		out, err = readConverted(nr, make([]int64, n), out)
	case "i4":
		out, err = readConverted(nr, make([]int32, n), out)
	case "i2":
		out, err = readConverted(nr, make([]int16, n), out)
	case "i1":
		out, err = readConverted(nr, make([]int8, n), out)
	case "u8":
		out, err = readConverted(nr, make([]uint64, n), out)
	case "u4":
		out, err = readConverted(nr, make([]uint32, n), out)
	case "u2":
		out, err = readConverted(nr, make([]uint16, n), out)
	case "u1":
		out, err = readConverted(nr, make([]uint8, n), out)
	default:
		return analysis.Array{}, pfx.Err(fmt.Errorf("unsupported npy dtype %q", nr.Header.Descr.Type))
	}
	if err != nil {
		return analysis.Array{}, pfx.Err(err)
	}

	return analysis.NewArray(out, shape...)
}

type number interface {
	~float32 | ~int64 | ~int32 | ~int16 | ~int8 | ~uint64 | ~uint32 | ~uint16 | ~uint8
}

func readConverted[T number](nr *npyio.Reader, raw []T, out []float64) ([]float64, error) {
	if err := nr.Read(&raw); err != nil {
		return nil, err
	}
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

// ReadUint8 reads an .npy stream of dtype uint8 (e.g. image pixels) without
// widening it, returning the stored shape and the raw bytes.
func ReadUint8(r io.Reader) ([]int, []uint8, error) {
	nr, err := openNPY(r)
	if err != nil {
		return nil, nil, err
	}

	if kind := strings.TrimLeft(nr.Header.Descr.Type, "<>|="); kind != "u1" {
		return nil, nil, pfx.Err(fmt.Errorf("expected npy dtype uint8, found %q", nr.Header.Descr.Type))
	}

	shape := append([]int(nil), nr.Header.Descr.Shape...)
	out := make([]uint8, shapeLen(shape))
	if err := nr.Read(&out); err != nil {
		return nil, nil, pfx.Err(err)
	}

	return shape, out, nil
}

// NPZ is an opened .npz archive (a zip of .npy members, as written by
// numpy.savez).
type NPZ struct {
	zr *zip.Reader
}

// OpenNPZ opens an .npz archive from random-access storage.
func OpenNPZ(r io.ReaderAt, size int64) (*NPZ, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &NPZ{zr: zr}, nil
}

// Names lists the arrays in the archive, without the .npy suffix, sorted.
func (z *NPZ) Names() []string {
	out := make([]string, 0, len(z.zr.File))
	for _, f := range z.zr.File {
		out = append(out, strings.TrimSuffix(path.Base(f.Name), ".npy"))
	}
	sort.Strings(out)

	return out
}

// Open returns a reader positioned at the start of the named member.
func (z *NPZ) Open(name string) (io.ReadCloser, error) {
	for _, f := range z.zr.File {
		if strings.TrimSuffix(path.Base(f.Name), ".npy") != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, pfx.Err(err)
		}

		return struct {
			io.Reader
			io.Closer
		}{bufio.NewReader(rc), rc}, nil
	}

	return nil, pfx.Err(fmt.Errorf("array %q not found in archive; have %v", name, z.Names()))
}

// Array reads the named member as a float64 Array.
func (z *NPZ) Array(name string) (analysis.Array, error) {
	rc, err := z.Open(name)
	if err != nil {
		return analysis.Array{}, err
	}
	defer rc.Close()

	return ReadArray(rc)
}

// Uint8 reads the named member as raw bytes.
func (z *NPZ) Uint8(name string) ([]int, []uint8, error) {
	rc, err := z.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	return ReadUint8(rc)
}
