package uncrej

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// GSReaderAtCloser decorates a Google Storage object handle with ReadAt, which
// is what archive/zip needs to walk an .npz file without downloading it first.
type GSReaderAtCloser struct {
	*storage.ObjectHandle
	Context context.Context
}

// ReadAt satisfies io.ReaderAt by issuing one range request per call.
func (o *GSReaderAtCloser) ReadAt(p []byte, offset int64) (n int, err error) {
	rdr, err := o.NewRangeReader(o.Context, offset, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rdr.Close()

	n, err = io.ReadFull(rdr, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	return n, err
}

// Close is a nop; every ReadAt closes its own range reader.
func (o *GSReaderAtCloser) Close() error {
	return nil
}

// MaybeOpenReaderAtFromGoogleStorage is the io.ReaderAt counterpart of
// MaybeOpenFromGoogleStorage.
func MaybeOpenReaderAtFromGoogleStorage(path string, client *storage.Client) (ReaderAtCloser, int64, error) {
	if client != nil && IsGSPath(path) {
		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, 0, pfx.Err(err)
		}

		handle := &GSReaderAtCloser{
			ObjectHandle: client.Bucket(bucketName).Object(pathName),
			Context:      context.Background(),
		}

		attrs, err := handle.Attrs(handle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return handle, attrs.Size, nil
	}

	f, size, err := openLocal(path)
	if err != nil {
		return nil, 0, err
	}

	return f, size, nil
}
