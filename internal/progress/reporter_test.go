package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIReporter(t *testing.T) {
	t.Setenv("CI", "true")
	var buf bytes.Buffer
	r := NewReporter(&buf, "Rendering species")
	_, ok := r.(*CIReporter)
	assert.True(t, ok)

	r.Start(2)
	r.Update(1, "Pongo pygmaeus")
	r.Update(2, "Bos javanicus")
	r.Finish()

	assert.Equal(t, "Rendering species: 2 items\n[1/2] Pongo pygmaeus\n[2/2] Bos javanicus\nRendering species: done\n", buf.String())
}

func TestTerminalReporter(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	r := NewReporter(&buf, "Seeding")
	_, ok := r.(*TerminalReporter)
	assert.True(t, ok)

	r.Start(3)
	r.Update(3, "links")
	r.Finish()
	assert.NotEmpty(t, buf.String())
}

func TestTerminalReporterWithoutStart(t *testing.T) {
	r := &TerminalReporter{}
	assert.NotPanics(t, func() {
		r.Update(1, "x")
		r.Finish()
	})
}
