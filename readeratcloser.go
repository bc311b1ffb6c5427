package uncrej

import "io"

// ReaderAtCloser is what archive readers (e.g. .npz files) need from a
// source: random access plus a way to release it.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}
