package editable

import (
	"context"
	"fmt"

	"github.com/pthm/editable/lib/dom"
)

// Built-in module names.
const (
	ModuleBase    = "base"
	ModuleListing = "listing"
)

// Module extends a container with structured sub-regions (components) and
// sub-actions.
type Module interface {
	// Init runs once when the host container is initialized.
	Init() error
	// Prepare runs just before a submit executes.
	Prepare() error
	// Execute dispatches the trigger's module action (or, failing that, its
	// action name) to the handler registered for it. Outcomes are reported
	// through action.
	Execute(ctx context.Context, action Action, trigger, host *dom.Node) error
	Base() *BaseModule
}

// ModuleHandler is one named module sub-action.
type ModuleHandler func(ctx context.Context, action Action, trigger, host *dom.Node) error

// BaseModule is the root module layer.
type BaseModule struct {
	Name string
	Host *dom.Node

	ed       *Editor
	self     Module
	handlers map[string]ModuleHandler
}

// Bind implements Binder.
func (m *BaseModule) Bind(self Module, name string) {
	m.self = self
	m.Name = name
}

// Self returns the fully assembled module.
func (m *BaseModule) Self() Module {
	if m.self == nil {
		return m
	}
	return m.self
}

func (m *BaseModule) Base() *BaseModule { return m }

func (m *BaseModule) attach(ed *Editor, host *dom.Node) {
	m.ed = ed
	m.Host = host
}

// Editor returns the editor the module is attached to.
func (m *BaseModule) Editor() *Editor { return m.ed }

// Handle registers the handler for a sub-action name.
func (m *BaseModule) Handle(name string, h ModuleHandler) {
	if m.handlers == nil {
		m.handlers = make(map[string]ModuleHandler)
	}
	m.handlers[name] = h
}

func (m *BaseModule) Init() error { return nil }

func (m *BaseModule) Prepare() error { return nil }

// Handles reports whether the module has a handler for trigger.
func (m *BaseModule) Handles(trigger *dom.Node) bool {
	_, ok := m.handlers[handlerName(trigger)]
	return ok
}

func handlerName(trigger *dom.Node) string {
	cfg := ConfigOf(trigger)
	if cfg.ModuleAction != "" {
		return cfg.ModuleAction
	}
	return cfg.Action
}

func (m *BaseModule) Execute(ctx context.Context, action Action, trigger, host *dom.Node) error {
	name := handlerName(trigger)
	h, ok := m.handlers[name]
	if !ok {
		return fmt.Errorf("%w: %s module action %q", ErrUnknownVariant, m.Name, name)
	}
	m.ed.log.Debug().Str("module", m.Name).Str("action", name).Msg("module action")
	return h(ctx, action, trigger, host)
}

// Component returns the named component of the module, ignoring components
// of nested modules.
func (m *BaseModule) Component(name string) *dom.Node {
	return m.Host.FindFirst(func(n *dom.Node) bool {
		return n.IsElement() && ConfigOf(n).Component == name && n.Parent.Closest(isModule) == m.Host
	})
}

func (ed *Editor) registerModules() {
	ed.modules.MustRegister(ModuleBase, func(Module) Module { return &BaseModule{} })
	ed.modules.MustRegister(ModuleListing, newListing, ModuleBase)
}
