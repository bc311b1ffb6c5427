package datasets

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej"
	"github.com/carbocation/uncrej/analysis"
	"github.com/carbocation/uncrej/predictions"
)

// MNISTOrigin is the Keras copy of MNIST.
const MNISTOrigin = "https://storage.googleapis.com/tensorflow/tf-keras-datasets/mnist.npz"

// Images is a batch of N grayscale H×W images, stored contiguously.
type Images struct {
	N, H, W int
	Pix     []uint8
}

// Image returns the pixels of image i, row-major.
func (im Images) Image(i int) []uint8 {
	size := im.H * im.W
	return im.Pix[i*size : (i+1)*size]
}

// Split is one partition (train or test) of a labelled image dataset.
type Split struct {
	X Images
	Y []int
}

// LoadMNIST returns the MNIST train and test splits (60000 and 10000 images of
// 28×28 pixels), downloading them on first use.
func LoadMNIST(ctx context.Context, cacheDir string) (train, test Split, err error) {
	return LoadKeras(ctx, MNISTOrigin, "mnist.npz", cacheDir, nil)
}

// LoadNotMNIST returns the notMNIST train and test splits from origin, which
// must be an .npz archive laid out like the Keras MNIST file. notMNIST has no
// canonical hosted copy, so the origin is required.
func LoadNotMNIST(ctx context.Context, origin, cacheDir string, client *storage.Client) (train, test Split, err error) {
	return LoadKeras(ctx, origin, "notmnist.npz", cacheDir, client)
}

// LoadKeras reads a Keras-style dataset archive holding x_train, y_train,
// x_test and y_test.
func LoadKeras(ctx context.Context, origin, fname, cacheDir string, client *storage.Client) (train, test Split, err error) {
	local, err := GetFile(ctx, origin, fname, cacheDir, client)
	if err != nil {
		return
	}

	f, size, err := uncrej.MaybeOpenReaderAtFromGoogleStorage(local, nil)
	if err != nil {
		return
	}
	defer f.Close()

	z, err := predictions.OpenNPZ(f, size)
	if err != nil {
		return
	}

	if train, err = readSplit(z, "train"); err != nil {
		return
	}
	if test, err = readSplit(z, "test"); err != nil {
		return
	}

	log.Printf("Loaded %s: %d train and %d test images of %dx%d\n", fname, train.X.N, test.X.N, train.X.H, train.X.W)

	return
}

func readSplit(z *predictions.NPZ, name string) (Split, error) {
	shape, pix, err := z.Uint8("x_" + name)
	if err != nil {
		return Split{}, err
	}
	if len(shape) != 3 {
		return Split{}, &analysis.RankError{Op: "x_" + name, Want: 3, Got: len(shape)}
	}

	y, err := z.Array("y_" + name)
	if err != nil {
		return Split{}, err
	}
	if y.Rank() != 1 {
		return Split{}, &analysis.RankError{Op: "y_" + name, Want: 1, Got: y.Rank()}
	}
	if y.Len() != shape[0] {
		return Split{}, pfx.Err(fmt.Errorf("%s: %d images but %d labels", name, shape[0], y.Len()))
	}

	labels := make([]int, y.Len())
	for i, v := range y.Data {
		labels[i] = int(v)
	}

	return Split{
		X: Images{N: shape[0], H: shape[1], W: shape[2], Pix: pix},
		Y: labels,
	}, nil
}

// LoadExamplePredictions fetches a stack of stochastic predictions, either a
// bare .npy file or an .npz archive with a y_stack member.
func LoadExamplePredictions(ctx context.Context, origin, cacheDir string, client *storage.Client) (predictions.Predictions, error) {
	fname := path.Base(origin)
	if fname == "." || fname == "/" {
		fname = ""
	}

	local, err := GetFile(ctx, origin, fname, cacheDir, client)
	if err != nil {
		return predictions.Predictions{}, err
	}

	if !strings.HasSuffix(fname, ".npz") {
		return predictions.Load(local, nil)
	}

	a, err := predictions.LoadNPZ(local, "y_stack", nil)
	if err != nil {
		return predictions.Predictions{}, err
	}

	return predictions.FromArray(a)
}
