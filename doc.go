// Package uncrej holds the input plumbing shared by the loaders in this
// module: sniffing compressed streams, opening local or gs:// paths as
// seekers or ReaderAts, and guessing the delimiter of text label files.
//
// The numeric work lives in the analysis package.
package uncrej
