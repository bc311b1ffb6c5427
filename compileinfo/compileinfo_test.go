package compileinfo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "No build information is embedded in this binary.", CompileInfo{}.String())

	s := CompileInfo{
		Binary:    "github.com/carbocation/uncrej/cmd/uncrej",
		Module:    "github.com/carbocation/uncrej",
		Version:   "(devel)",
		GoVersion: "go1.18",
		Commit:    "abc123",
		Modified:  true,
	}.String()
	assert.Contains(t, s, "abc123 (with uncommitted changes)")
	assert.Contains(t, s, "go1.18")
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}
