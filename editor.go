package editable

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pthm/editable/lib/dom"
)

// Editor is the edit-state engine for one process. It owns the variant
// registries, the template repository, the dataset loader, the transport and
// the loop on which asynchronous outcomes are applied.
//
// An Editor and the documents it manages must be used from one goroutine at a
// time. Targets may finish on other goroutines; their outcomes are queued and
// applied by Settle.
type Editor struct {
	actions   *Registry[Action]
	targets   *Registry[Target]
	modules   *Registry[Module]
	inputs    *Registry[Input]
	templates *Templates
	data      DataLoader
	transport Transport
	log       zerolog.Logger
	loop      *loop
	live      map[*dom.Node]Input
	observers []Observer
	rowSeq    int
}

// Observer receives every event the engine emits.
type Observer func(node *dom.Node, event string, payload any)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(ed *Editor) {
		ed.log = l
	}
}

// WithDataLoader sets the dataset loader used by select inputs.
func WithDataLoader(d DataLoader) Option {
	return func(ed *Editor) {
		ed.data = d
	}
}

// WithTransport sets the transport used by the generic poster target.
func WithTransport(t Transport) Option {
	return func(ed *Editor) {
		ed.transport = t
	}
}

// WithTemplates sets the template repository.
func WithTemplates(t *Templates) Option {
	return func(ed *Editor) {
		ed.templates = t
	}
}

// New creates an editor with the built-in actions, targets, modules and
// inputs registered.
func New(opts ...Option) *Editor {
	ed := &Editor{
		actions:   NewRegistry[Action]("action"),
		targets:   NewRegistry[Target]("target"),
		modules:   NewRegistry[Module]("module"),
		inputs:    NewRegistry[Input]("input"),
		templates: NewTemplates(),
		transport: &HTTPTransport{},
		log:       zerolog.Nop(),
		loop:      newLoop(),
		live:      make(map[*dom.Node]Input),
	}
	for _, opt := range opts {
		opt(ed)
	}
	ed.registerActions()
	ed.registerTargets()
	ed.registerModules()
	ed.registerInputs()
	return ed
}

// Actions returns the action registry.
func (ed *Editor) Actions() *Registry[Action] { return ed.actions }

// Targets returns the target registry.
func (ed *Editor) Targets() *Registry[Target] { return ed.targets }

// Modules returns the module registry.
func (ed *Editor) Modules() *Registry[Module] { return ed.modules }

// Inputs returns the input registry.
func (ed *Editor) Inputs() *Registry[Input] { return ed.inputs }

// Templates returns the template repository.
func (ed *Editor) Templates() *Templates { return ed.templates }

// Logger returns the editor's logger.
func (ed *Editor) Logger() zerolog.Logger { return ed.log }

// Observe registers an observer for every emitted event.
func (ed *Editor) Observe(o Observer) {
	ed.observers = append(ed.observers, o)
}

func (ed *Editor) emit(n *dom.Node, name string, payload any) {
	n.Trigger(name, payload)
	for _, o := range ed.observers {
		o(n, name, payload)
	}
}

// Settle applies queued outcomes until no target, dataset load or module
// work is outstanding, or ctx is done.
func (ed *Editor) Settle(ctx context.Context) error {
	return ed.loop.settle(ctx)
}

// Outstanding returns the number of unresolved asynchronous units.
func (ed *Editor) Outstanding() int {
	return ed.loop.outstanding()
}

// Init collects templates and initializes every container in root.
func (ed *Editor) Init(root *dom.Node) error {
	if err := ed.templates.Collect(root); err != nil {
		return err
	}
	containers := root.Find(isContainer)
	if isContainer(root) {
		containers = append([]*dom.Node{root}, containers...)
	}
	for _, c := range containers {
		if err := ed.initContainer(c); err != nil {
			return err
		}
	}
	ed.log.Debug().Int("containers", len(containers)).Msg("document initialized")
	return nil
}

// Trigger performs the user gesture bound to node: it resolves the node's
// action, executes it against the nearest container and emits
// "action:<name>" on node. Failures reach the page as action-error events;
// the returned error is reserved for programming errors.
func (ed *Editor) Trigger(ctx context.Context, node *dom.Node) (any, error) {
	name := ConfigOf(node).Action
	if name == "" {
		return nil, fmt.Errorf("%w: element has no %s", ErrUnknownVariant, AttrAction)
	}
	action, err := ed.actions.New(name)
	if err != nil {
		return nil, err
	}
	container := ed.ContainerOf(node)
	if container == nil {
		return nil, ErrNotContainer
	}
	ed.log.Debug().Str("action", name).Str("container", describe(container)).Msg("executing action")
	r, err := action.Execute(ctx, node, container)
	if err != nil {
		return nil, err
	}
	ed.emit(node, "action:"+name, r)
	return r, nil
}

// Toggle flips the container between view and edit mode. Containers grouped
// to it follow.
func (ed *Editor) Toggle(container *dom.Node) error {
	return ed.toggle(container)
}

// Export writes the validated values of the owner's fields into out.
func (ed *Editor) Export(owner *dom.Node, out Data) error {
	return ed.export(owner, out)
}

// Sync brings the owner's subtree in line with its current mode,
// initializing anything added since Init.
func (ed *Editor) Sync(owner *dom.Node) error {
	return ed.sync(owner, nil)
}

// InputOf returns the live input bound to field, if any.
func (ed *Editor) InputOf(field *dom.Node) Input {
	return ed.live[field]
}

// LiveInputs returns the live inputs bound to fields inside root.
func (ed *Editor) LiveInputs(root *dom.Node) map[*dom.Node]Input {
	out := make(map[*dom.Node]Input)
	for f, in := range ed.live {
		if root.Contains(f) {
			out[f] = in
		}
	}
	return out
}

// ModuleOf returns the module attached to a module host.
func (ed *Editor) ModuleOf(host *dom.Node) Module {
	m, _ := host.Data(dataModule).(Module)
	return m
}

// ContainerOf returns n or its nearest ancestor that is a container.
func (ed *Editor) ContainerOf(n *dom.Node) *dom.Node {
	return n.Closest(isContainer)
}

func describe(n *dom.Node) string {
	if id := n.ID(); id != "" {
		return "#" + id
	}
	cfg := ConfigOf(n)
	switch {
	case !cfg.Target.IsZero():
		return n.Tag + "[" + cfg.Target.Raw + "]"
	case cfg.Module != "":
		return n.Tag + "[module=" + cfg.Module + "]"
	case cfg.Component != "":
		return n.Tag + "[component=" + cfg.Component + "]"
	}
	return n.Tag
}
