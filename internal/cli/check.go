package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pthm/editable"
	"github.com/pthm/editable/lib/dom"
)

// Flags for the `check` command line command.
type CheckCommand struct {
	Args struct {
		Pages []string `positional-arg-name:"<PAGE>" required:"1"`
	} `positional-args:"yes"`

	Verbose bool `short:"V" long:"verbose" description:"list every container and field"`
}

// Executes the check command.
// (This gets called by `go-flags` when `check` is provided on the command
// line)
func (command *CheckCommand) Execute(args []string) error {
	failed := 0
	for _, path := range command.Args.Pages {
		n, err := command.checkFile(os.Stdout, path)
		if err != nil {
			return err
		}
		failed += n
	}
	if failed > 0 {
		return fmt.Errorf("%d problem(s) found", failed)
	}
	return nil
}

func (command *CheckCommand) checkFile(w io.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("can't parse '%s': %w", path, err)
	}
	return CheckPage(w, path, doc, command.Verbose), nil
}

// CheckPage writes a report on doc to w and returns the number of problems.
func CheckPage(w io.Writer, name string, doc *dom.Node, verbose bool) int {
	ed := editable.New()
	problems := ed.Check(doc)

	var containers, fields int
	for _, n := range doc.Find(func(n *dom.Node) bool { return n.IsElement() }) {
		cfg := editable.ConfigOf(n)
		switch {
		case cfg.IsContainer():
			containers++
			if verbose {
				fmt.Fprintf(w, "  container %s\n", label(n, cfg))
			}
		case cfg.IsField():
			fields++
			if verbose {
				fmt.Fprintf(w, "  field %s (%s)\n", cfg.Name, cfg.Type)
			}
		}
	}

	if len(problems) == 0 {
		if err := ed.Init(doc); err != nil {
			problems = append(problems, editable.Problem{Node: doc, Message: err.Error()})
		}
	}

	fmt.Fprintf(w, "%s: %d container(s), %d field(s), %d problem(s)\n", name, containers, fields, len(problems))
	for _, p := range problems {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return len(problems)
}

func label(n *dom.Node, cfg *editable.Config) string {
	if id := n.ID(); id != "" {
		return "#" + id
	}
	if cfg.Module != "" {
		return "module " + cfg.Module
	}
	return cfg.Target.Raw
}
