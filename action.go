package editable

import (
	"context"
	"fmt"

	"github.com/pthm/editable/lib/dom"
)

// Built-in action names.
const (
	ActionBase   = "base"
	ActionToggle = "toggle-edit"
	ActionSubmit = "submit"
	ActionModule = "module-action"
)

// Action handles a user gesture on a trigger element.
//
// Execute returns an error only for programming errors. Expected failures
// (validation, transport, module) are reported through SignalError as
// action-error events on the container.
type Action interface {
	Execute(ctx context.Context, trigger, container *dom.Node) (any, error)
	SignalSuccess(container *dom.Node, payload any)
	SignalError(container *dom.Node, f Failure)
	Base() *BaseAction
}

// BaseAction is the root action layer.
type BaseAction struct {
	Name        string
	Trigger     *dom.Node
	Container   *dom.Node
	LoadingShim bool

	ed   *Editor
	self Action
}

// Bind implements Binder.
func (a *BaseAction) Bind(self Action, name string) {
	a.self = self
	a.Name = name
}

// Self returns the fully assembled action.
func (a *BaseAction) Self() Action {
	if a.self == nil {
		return a
	}
	return a.self
}

func (a *BaseAction) Base() *BaseAction { return a }

// Execute records the trigger and container and shows the loading shim.
func (a *BaseAction) Execute(ctx context.Context, trigger, container *dom.Node) (any, error) {
	a.Trigger = trigger
	a.Container = container
	if a.LoadingShim {
		if shim := loadingShim(container); shim != nil {
			shim.Show()
		}
	}
	return nil, nil
}

// SignalSuccess emits action-success and action-success:<name> on container.
func (a *BaseAction) SignalSuccess(container *dom.Node, payload any) {
	a.ed.emit(container, EventActionSuccess, payload)
	a.ed.emit(container, EventActionSuccess+":"+a.Name, payload)
	a.hideShim()
}

// SignalError emits action-error and action-error:<name> on container.
func (a *BaseAction) SignalError(container *dom.Node, f Failure) {
	p := errorPayload(f)
	a.ed.log.Debug().Str("action", a.Name).Str("reason", p.Reason).Str("info", p.Info).Msg("action failed")
	a.ed.emit(container, EventActionError, p)
	a.ed.emit(container, EventActionError+":"+a.Name, p)
	a.hideShim()
}

// hideShim hides the loading shim once the action's container has no
// outstanding target.
func (a *BaseAction) hideShim() {
	if !a.LoadingShim || a.Container == nil || StateOf(a.Container) == StatePending {
		return
	}
	if shim := loadingShim(a.Container); shim != nil {
		shim.Hide()
	}
}

// route reports err through SignalError when it is a Failure and returns it
// otherwise.
func route(a Action, container *dom.Node, err error) error {
	if err == nil {
		return nil
	}
	if f, ok := AsFailure(err); ok {
		a.SignalError(container, f)
		return nil
	}
	return err
}

type toggleAction struct {
	Action
}

func (a *toggleAction) Execute(ctx context.Context, trigger, container *dom.Node) (any, error) {
	a.Action.Execute(ctx, trigger, container)
	ed := a.Base().ed
	if err := ed.toggle(container); err != nil {
		return nil, err
	}
	change := ModeChange{Mode: ModeOf(container)}
	ed.emit(container, EventActionSuccess+":toggle", change)
	return change, nil
}

type submitAction struct {
	Action
}

func newSubmitAction(parent Action) Action {
	parent.Base().LoadingShim = true
	return &submitAction{Action: parent}
}

// submittedKey carries the containers already submitted by a gesture.
type submittedKey struct{}

// markSubmitted records container as submitted in ctx. It reports false when
// the gesture already submitted it.
func markSubmitted(ctx context.Context, container *dom.Node) (context.Context, bool) {
	seen, _ := ctx.Value(submittedKey{}).(map[*dom.Node]bool)
	if seen == nil {
		seen = map[*dom.Node]bool{}
		ctx = context.WithValue(ctx, submittedKey{}, seen)
	}
	if seen[container] {
		return ctx, false
	}
	seen[container] = true
	return ctx, true
}

func (a *submitAction) Execute(ctx context.Context, trigger, container *dom.Node) (any, error) {
	ctx, first := markSubmitted(ctx, container)
	if !first {
		return nil, nil
	}
	a.Action.Execute(ctx, trigger, container)
	b := a.Base()
	ed := b.ed
	self := b.Self()
	cfg := ConfigOf(container)

	data := Data{}
	if err := ed.export(container, data); err != nil {
		return nil, route(self, container, err)
	}

	var target Target
	if !cfg.Target.IsZero() {
		t, err := ed.newTarget(cfg.Target, container, data)
		if err != nil {
			return nil, route(self, container, err)
		}
		target = t
	}

	var modules []Module
	for _, host := range ed.modulesOf(container) {
		m := ed.ModuleOf(host)
		if m == nil || !m.Base().Handles(trigger) {
			continue
		}
		if err := m.Prepare(); err != nil {
			return nil, route(self, host, err)
		}
		modules = append(modules, m)
	}

	if target != nil {
		ed.markPending(container, 1)
		sig := ed.newSignal(describe(container), func(d Data) {
			ed.markPending(container, -1)
			ed.emit(container, EventSuccess, d)
			self.SignalSuccess(container, d)
			if err := ed.setMode(container, ModeView, commitData(data, d)); err != nil {
				ed.log.Error().Err(err).Str("container", describe(container)).Msg("commit toggle failed")
			}
		}, func(f Failure) {
			ed.markPending(container, -1)
			ed.emit(container, EventError, errorPayload(f))
			self.SignalError(container, f)
		})
		ed.log.Debug().Str("container", describe(container)).Str("target", target.Base().Kind).Msg("submitting")
		target.Execute(ctx, sig)
	}

	for _, g := range ed.grouped(container) {
		if ModeOf(g) != ModeEdit && !ConfigOf(g).Always {
			continue
		}
		sub, err := ed.actions.New(b.Name)
		if err != nil {
			return nil, err
		}
		if _, err := sub.Execute(ctx, trigger, g); err != nil {
			return nil, err
		}
	}

	for _, m := range modules {
		host := m.Base().Host
		if err := m.Execute(ctx, self, trigger, host); err != nil {
			if err := route(self, host, err); err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

// commitData overlays the target's reply on the exported data.
func commitData(exported, reply Data) Data {
	out := make(Data, len(exported)+len(reply))
	for k, v := range exported {
		out[k] = v
	}
	for k, v := range reply {
		out[k] = v
	}
	return out
}

// moduleAction forwards the gesture to the module hosting the trigger.
type moduleAction struct {
	Action
}

func (a *moduleAction) Execute(ctx context.Context, trigger, container *dom.Node) (any, error) {
	a.Action.Execute(ctx, trigger, container)
	b := a.Base()
	host := trigger.Closest(isModule)
	if host == nil {
		return nil, fmt.Errorf("%w: no module host", ErrNotContainer)
	}
	m := b.ed.ModuleOf(host)
	if m == nil {
		return nil, fmt.Errorf("%w: module %q not initialized", ErrUnknownVariant, ConfigOf(host).Module)
	}
	return nil, route(b.Self(), host, m.Execute(ctx, b.Self(), trigger, host))
}

func (ed *Editor) registerActions() {
	r := ed.actions
	r.MustRegister(ActionBase, func(Action) Action { return &BaseAction{ed: ed} })
	r.MustRegister(ActionToggle, func(parent Action) Action { return &toggleAction{Action: parent} }, ActionBase)
	r.MustRegister(ActionSubmit, newSubmitAction, ActionBase)
	r.MustRegister(ActionModule, func(parent Action) Action { return &moduleAction{Action: parent} }, ActionBase)
}
