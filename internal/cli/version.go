package cli

import "fmt"

const version = "0.1.0"

// VersionCommand prints the version.
type VersionCommand struct{}

// Execute prints the version.
// (This gets called by `go-flags` when `version` is provided on the command
// line)
func (command *VersionCommand) Execute(args []string) error {
	fmt.Printf("editable version %s\n", version)
	return nil
}
