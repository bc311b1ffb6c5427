// Package datasets fetches the image datasets and example predictions used to
// demonstrate uncertainty-based rejection, caching every download on disk.
package datasets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej"
)

// ErrMissingFilename is returned by GetFile when no cache file name is given.
var ErrMissingFilename = errors.New("datasets: a file name is required")

// DefaultCacheDir is where downloads land unless a directory is given.
const DefaultCacheDir = "~/.uncrej/datasets"

// HTTPClient is used for http(s) origins.
var HTTPClient = http.DefaultClient

// GetFile makes origin available in cacheDir under fname and returns the local
// path. An existing cached file is reused as-is. origin may be an http(s) URL,
// a gs:// path (requires client) or a local file.
func GetFile(ctx context.Context, origin, fname, cacheDir string, client *storage.Client) (string, error) {
	if fname == "" {
		return "", ErrMissingFilename
	}

	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	cacheDir, err := uncrej.ExpandHome(cacheDir)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(cacheDir, fname)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	src, err := openOrigin(ctx, origin, client)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", pfx.Err(err)
	}

	log.Printf("Downloading %s to %s\n", origin, dest)

	// Partial downloads must never appear under dest.
	tmp, err := os.CreateTemp(cacheDir, fname+".part*")
	if err != nil {
		return "", pfx.Err(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", pfx.Err(fmt.Errorf("%s: %w", origin, err))
	}
	if err := tmp.Close(); err != nil {
		return "", pfx.Err(err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", pfx.Err(err)
	}

	return dest, nil
}

func openOrigin(ctx context.Context, origin string, client *storage.Client) (io.ReadCloser, error) {
	switch {
	case uncrej.IsGSPath(origin):
		if client == nil {
			return nil, pfx.Err(fmt.Errorf("%s: a storage client is required for gs:// origins", origin))
		}
		bucket, object, err := uncrej.SplitGSPath(origin)
		if err != nil {
			return nil, pfx.Err(err)
		}
		r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", origin, err))
		}
		return r, nil

	case strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
		if err != nil {
			return nil, pfx.Err(err)
		}
		resp, err := HTTPClient.Do(req)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, pfx.Err(fmt.Errorf("%s: %s", origin, resp.Status))
		}
		return resp.Body, nil
	}

	f, err := os.Open(origin)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}
