package uncrej

import (
	"bytes"
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in sample, assuming a CSV-like file. Single-column files have no
// delimiter to find, and get a comma.
func DetermineDelimiter(sample []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	// Label files hold numbers like -1 or 0.0, so only conventional
	// separators are trusted.
	for _, v := range delimiters {
		if len(v) == 1 && strings.ContainsRune(",\t;| ", rune(v[0])) {
			return rune(v[0])
		}
	}

	return ','
}

// PeekDelimiter reads up to n bytes from r to guess its delimiter, and
// returns a reader that replays those bytes before the rest of r.
func PeekDelimiter(r io.Reader, n int) (rune, io.Reader, error) {
	buf := make([]byte, n)
	k, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ',', nil, err
	}
	buf = buf[:k]

	return DetermineDelimiter(buf), io.MultiReader(bytes.NewReader(buf), r), nil
}
