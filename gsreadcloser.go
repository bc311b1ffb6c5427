package uncrej

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// GSReadCloser streams a Google Storage object from start to end. The range
// reader is opened on the first Read.
type GSReadCloser struct {
	*storage.ObjectHandle
	Context context.Context
	r       *storage.Reader
}

func (s *GSReadCloser) Read(buf []byte) (int, error) {
	if s.r == nil {
		var err error
		// -1 reads to the end of the object
		s.r, err = s.NewRangeReader(s.Context, 0, -1)
		if err != nil {
			return 0, err
		}
	}

	return s.r.Read(buf)
}

func (s *GSReadCloser) Close() error {
	if s.r == nil {
		return nil
	}

	err := s.r.Close()
	s.r = nil
	return err
}

// SplitGSPath splits gs://bucket/path/to/object into bucket and object name.
func SplitGSPath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into bucket and object, but got %d part(s): %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// IsGSPath reports whether path points at Google Storage.
func IsGSPath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// MaybeOpenFromGoogleStorage opens path from Google Storage if it is a gs://
// path and a client is available, and from the local filesystem otherwise.
// It also returns the size of the object in bytes.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (io.ReadCloser, int64, error) {
	if client != nil && IsGSPath(path) {
		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, 0, pfx.Err(err)
		}

		wrappedHandle := &GSReadCloser{
			ObjectHandle: client.Bucket(bucketName).Object(pathName),
			Context:      context.Background(),
		}

		// Make a hard call to get the filesize
		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return wrappedHandle, attrs.Size, nil
	}

	f, size, err := openLocal(path)
	if err != nil {
		return nil, 0, err
	}

	return f, size, nil
}

func openLocal(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, pfx.Err(err)
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, pfx.Err(err)
	}

	return f, fstat.Size(), nil
}
