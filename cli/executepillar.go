package cli

import (
	"bytes"
)

// ExecutePillar performs a pillar fetch using the CLI. It's primarily intended for
// testing purposes
func ExecutePillar(args ...string) (output []byte, err error) {
	logLevel = ``
	configPath = ``
	urlTemplate = ``
	withGrains = false
	grainVars = nil
	grainsFile = ``
	renderAs = ``

	cmd := NewCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)

	err = cmd.Execute()

	return buf.Bytes(), err
}
