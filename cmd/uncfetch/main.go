// uncfetch downloads the MNIST and notMNIST test sets and an example
// prediction stack into the local dataset cache, and optionally exports the
// MNIST test labels in a form uncrej can read.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/uncrej"
	_ "github.com/carbocation/uncrej/compileinfoprint"
	"github.com/carbocation/uncrej/datasets"
	"github.com/carbocation/uncrej/predictions"
)

// Safe for concurrent use by multiple goroutines
var client *storage.Client

func main() {
	fmt.Fprintf(os.Stderr, "%q\n", os.Args)

	var cacheDir, notMNIST, example, labelsOut string
	var skipMNIST bool

	flag.StringVar(&cacheDir, "cache", datasets.DefaultCacheDir, "Directory that holds downloaded files")
	flag.BoolVar(&skipMNIST, "skip-mnist", false, "(Optional) Do not fetch MNIST")
	flag.StringVar(&notMNIST, "notmnist", "", "(Optional) URL, gs:// path or local path of a Keras-style notMNIST .npz")
	flag.StringVar(&example, "example", "", "(Optional) URL, gs:// path or local path of example predictions (.npy, or .npz with y_stack)")
	flag.StringVar(&labelsOut, "labels-out", "", "(Optional) Write the MNIST test labels to this .npy file")
	flag.Parse()

	if skipMNIST && notMNIST == "" && example == "" {
		flag.Usage()
		os.Exit(1)
	}

	if uncrej.IsGSPath(notMNIST) || uncrej.IsGSPath(example) {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			log.Fatalln(err)
		}
	}

	ctx := context.Background()

	if !skipMNIST {
		_, test, err := datasets.LoadMNIST(ctx, cacheDir)
		if err != nil {
			log.Fatalln(err)
		}

		if labelsOut != "" {
			if err := writeLabels(labelsOut, test.Y); err != nil {
				log.Fatalln(err)
			}
			log.Printf("Wrote %d MNIST test labels to %s\n", len(test.Y), labelsOut)
		}
	}

	if notMNIST != "" {
		if _, _, err := datasets.LoadNotMNIST(ctx, notMNIST, cacheDir, client); err != nil {
			log.Fatalln(err)
		}
	}

	if example != "" {
		pred, err := datasets.LoadExamplePredictions(ctx, example, cacheDir, client)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("Example predictions: %d samples x %d draws x %d classes\n", pred.Samples(), pred.Draws(), pred.Classes())
	}
}

func writeLabels(path string, labels []int) error {
	values := make([]float64, len(labels))
	for i, v := range labels {
		values[i] = float64(v)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := predictions.WriteVector(f, values); err != nil {
		return err
	}

	return pfx.Err(f.Close())
}
