package editable

import (
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// Mode is the edit mode of a container, component or field.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// State is the submit-protocol state of a container.
type State string

const (
	StateView    State = "view"
	StateEdit    State = "edit"
	StatePending State = "pending"
)

// Per-node data keys.
const (
	dataMode        = "edit-mode"
	dataInitialized = "edit-initialized"
	dataPending     = "edit-pending"
	dataInput       = "edit-input-instance"
	dataBackup      = "edit-content-backup"
	dataModule      = "edit-module"
)

// ModeOf returns the node's edit mode. Nodes never toggled are in view mode.
func ModeOf(n *dom.Node) Mode {
	if m, ok := n.Data(dataMode).(Mode); ok {
		return m
	}
	return ModeView
}

// StateOf returns the container's submit state.
func StateOf(container *dom.Node) State {
	if p, _ := container.Data(dataPending).(int); p > 0 {
		return StatePending
	}
	if ModeOf(container) == ModeEdit {
		return StateEdit
	}
	return StateView
}

func (ed *Editor) markPending(c *dom.Node, delta int) {
	p, _ := c.Data(dataPending).(int)
	p += delta
	if p <= 0 {
		c.SetData(dataPending, nil)
		return
	}
	c.SetData(dataPending, p)
}

// ownerOf returns the nearest ancestor of n that owns fields.
func ownerOf(n *dom.Node) *dom.Node {
	if n.Parent == nil {
		return nil
	}
	return n.Parent.Closest(isOwner)
}

// ownedFields returns the fields whose nearest owner is owner.
func (ed *Editor) ownedFields(owner *dom.Node) []*dom.Node {
	return owner.Find(func(n *dom.Node) bool {
		return isField(n) && ownerOf(n) == owner
	})
}

// ownedOwners returns the containers and components directly nested in owner.
func (ed *Editor) ownedOwners(owner *dom.Node) []*dom.Node {
	return owner.Find(func(n *dom.Node) bool {
		return isOwner(n) && ownerOf(n) == owner
	})
}

// followers returns the nested owners that share owner's mode: module
// components and module hosts without a target of their own.
func (ed *Editor) followers(owner *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, sub := range ed.ownedOwners(owner) {
		if ConfigOf(sub).Target.IsZero() {
			out = append(out, sub)
		}
	}
	return out
}

// grouped returns the containers that name container as their group.
func (ed *Editor) grouped(container *dom.Node) []*dom.Node {
	id := container.ID()
	if id == "" {
		return nil
	}
	return container.Root().Find(func(n *dom.Node) bool {
		return n != container && isContainer(n) && ConfigOf(n).Group == id
	})
}

// modulesOf returns the module hosts inside container that are not nested in
// another target container, container itself included.
func (ed *Editor) modulesOf(container *dom.Node) []*dom.Node {
	var out []*dom.Node
	if isModule(container) {
		out = append(out, container)
	}
	for _, m := range container.Find(isModule) {
		box := m.Parent.Closest(isTargetBox)
		if box == nil || box == container || !container.Contains(box) {
			out = append(out, m)
		}
	}
	return out
}

func (ed *Editor) initContainer(c *dom.Node) error {
	if c.Data(dataInitialized) != nil {
		return nil
	}
	c.SetData(dataInitialized, true)
	cfg := ConfigOf(c)

	panel := dom.NewElement("div", dom.Attr{Key: "class", Val: "editable popin error"})
	panel.Append(
		dom.NewElement("div", dom.Attr{Key: "class", Val: "main"}),
		dom.NewElement("div", dom.Attr{Key: "class", Val: "extra"}),
	)
	panel.Hide()
	c.Prepend(panel)

	shim := dom.NewElement("div", dom.Attr{Key: "class", Val: "editable loading-shim"})
	shim.Hide()
	c.Prepend(shim)

	c.On(EventActionError, func(ev *dom.Event) {
		if ev.Target != c {
			return
		}
		if p, ok := ev.Payload.(ErrorPayload); ok {
			showErrorPanel(c, p)
		}
	})

	mode := ModeView
	if cfg.Always {
		mode = ModeEdit
	}
	c.SetData(dataMode, mode)

	if cfg.Module != "" {
		m, err := ed.modules.New(cfg.Module)
		if err != nil {
			return err
		}
		m.Base().attach(ed, c)
		c.SetData(dataModule, m)
		if err := m.Init(); err != nil {
			return err
		}
	}

	ed.preloadDatasets(c)
	for _, sub := range ed.followers(c) {
		ed.preloadDatasets(sub)
	}
	if err := ed.sync(c, nil); err != nil {
		return err
	}
	ed.log.Debug().Str("container", describe(c)).Str("mode", string(mode)).Msg("container initialized")
	return nil
}

// errorPanel returns the container's own error panel.
func errorPanel(c *dom.Node) *dom.Node {
	if ps := c.ChildrenMatching(dom.Class("editable", "popin", "error")); len(ps) > 0 {
		return ps[0]
	}
	return nil
}

func loadingShim(c *dom.Node) *dom.Node {
	if ss := c.ChildrenMatching(dom.Class("editable", "loading-shim")); len(ss) > 0 {
		return ss[0]
	}
	return nil
}

func showErrorPanel(c *dom.Node, p ErrorPayload) {
	panel := errorPanel(c)
	if panel == nil {
		return
	}
	if main := panel.FindFirst(dom.Class("main")); main != nil {
		main.SetText(Humanize(p.Reason))
	}
	if extra := panel.FindFirst(dom.Class("extra")); extra != nil {
		extra.SetText(p.Info)
	}
	panel.Show()
}

func hidePanels(c *dom.Node) {
	for _, p := range c.ChildrenMatching(dom.Class("editable", "popin")) {
		p.Hide()
	}
}

// toggle flips the container's mode and carries grouped containers along.
func (ed *Editor) toggle(c *dom.Node) error {
	next := ModeEdit
	if ModeOf(c) == ModeEdit {
		next = ModeView
	}
	if err := ed.setMode(c, next, nil); err != nil {
		return err
	}
	for _, g := range ed.grouped(c) {
		if ModeOf(g) == next {
			continue
		}
		if err := ed.setMode(g, next, nil); err != nil {
			return err
		}
	}
	return nil
}

// setMode moves the container to mode. Leaving edit mode with data commits
// the values; without data the fields' previous content is restored.
func (ed *Editor) setMode(c *dom.Node, mode Mode, data Data) error {
	prev := ModeOf(c)
	if ConfigOf(c).Always {
		mode = ModeEdit
	}
	c.SetData(dataMode, mode)
	hidePanels(c)
	if prev == ModeEdit && mode == ModeView && data == nil {
		ed.emit(c, EventEditCancel, nil)
	}
	if err := ed.sync(c, data); err != nil {
		return err
	}
	ed.emit(c, EventToggle, mode)
	ed.log.Debug().Str("container", describe(c)).Str("mode", string(mode)).Msg("toggled")
	return nil
}

// sync brings owner's fields, markers and following components in line with
// owner's mode. data, when non-nil, holds committed values for the fields.
func (ed *Editor) sync(owner *dom.Node, data Data) error {
	cfg := ConfigOf(owner)
	mode := ModeOf(owner)
	if cfg.Always && mode != ModeEdit {
		mode = ModeEdit
		owner.SetData(dataMode, mode)
	}

	for _, el := range owner.Find(dom.HasAttr(AttrToggled)) {
		if ownerOf(el) != owner {
			continue
		}
		if Mode(ConfigOf(el).Toggled) == mode {
			el.Show()
		} else {
			el.Hide()
		}
	}

	for _, f := range ed.ownedFields(owner) {
		if err := ed.setFieldMode(f, owner, mode, data); err != nil {
			return err
		}
	}

	var followData Data
	if data != nil {
		followData = Data{}
	}
	for _, sub := range ed.followers(owner) {
		if isContainer(sub) && sub.Data(dataInitialized) == nil {
			if err := ed.initContainer(sub); err != nil {
				return err
			}
		}
		subMode := mode
		if ConfigOf(sub).Always {
			subMode = ModeEdit
		}
		sub.SetData(dataMode, subMode)
		if err := ed.sync(sub, followData); err != nil {
			return err
		}
	}
	return nil
}

// setFieldMode binds or unbinds the field's input.
func (ed *Editor) setFieldMode(f, container *dom.Node, mode Mode, data Data) error {
	in := ed.live[f]
	if mode == ModeEdit {
		f.SetData(dataMode, ModeEdit)
		if in != nil {
			return nil
		}
		in, err := ed.createInput(ConfigOf(f).Type, f, container)
		if err != nil {
			return err
		}
		f.SetData(dataBackup, f.CloneChildren())
		f.ReplaceChildren(in.Base().Frame)
		ed.live[f] = in
		f.SetData(dataInput, in)
		return nil
	}

	f.SetData(dataMode, ModeView)
	if in == nil {
		return nil
	}
	in.Reset()
	if data != nil {
		in.Apply(data[ConfigOf(f).Name])
	} else if backup, ok := f.Data(dataBackup).([]*dom.Node); ok {
		f.ReplaceChildren(backup...)
	}
	ed.unbind(f)
	return nil
}

// unbind discards the field's live input.
func (ed *Editor) unbind(f *dom.Node) {
	delete(ed.live, f)
	f.SetData(dataInput, nil)
	f.SetData(dataBackup, nil)
}

// teardown discards every live input inside root.
func (ed *Editor) teardown(root *dom.Node) {
	for f := range ed.LiveInputs(root) {
		ed.unbind(f)
	}
}

// export writes the owner's validated field values into out. A failed field
// check does not stop the others; all failures are returned together as
// *ValidationErrors.
func (ed *Editor) export(owner *dom.Node, out Data) error {
	cfg := ConfigOf(owner)
	if ModeOf(owner) != ModeEdit && !cfg.Always {
		return nil
	}

	errs := ed.exportFields(ed.ownedFields(owner), out)

	if cfg.HasID {
		out[KeyID] = cfg.ID
	}
	for _, payload := range owner.ChildrenMatching(dom.Class("payload")) {
		for _, el := range payload.ChildrenMatching(dom.HasAttr(AttrName)) {
			out[ConfigOf(el).Name] = strings.TrimSpace(el.Text())
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs, Export: out}
	}
	return nil
}

func (ed *Editor) exportFields(fields []*dom.Node, out Data) map[string]string {
	errs := make(map[string]string)
	var ok []*dom.Node
	for _, f := range fields {
		in := ed.live[f]
		if in == nil {
			continue
		}
		if err := ed.checkField(f, in); err != nil {
			errs[err.Field] = err.Message
			continue
		}
		ok = append(ok, f)
	}

	if len(errs) == 0 {
		for _, f := range ok {
			out[ConfigOf(f).Name] = ed.live[f].Export()
		}
	}
	out[KeyValid] = len(errs) == 0
	out[KeyValidationErrors] = errs
	return errs
}

// checkField runs the required and validity checks of one field, showing the
// input's note on failure.
func (ed *Editor) checkField(f *dom.Node, in Input) *ValidationError {
	cfg := ConfigOf(f)
	in.Reset()
	var msg string
	switch {
	case cfg.Required && in.Blank():
		msg = in.RequiredMessage()
	case !in.Validate():
		msg = in.ValidationMessage()
	default:
		return nil
	}
	in.ShowValidationError(msg)
	return &ValidationError{Field: cfg.Name, Message: msg}
}
