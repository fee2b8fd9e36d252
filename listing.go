package editable

import (
	"context"
	"fmt"
	"sort"

	"github.com/pthm/editable/lib/dom"
)

// Listing components.
const (
	ComponentList = "list"
	ComponentAdd  = "add"
)

// Listing is an editable list of rows. The "list" component holds the rows,
// one element per row carrying data-edit-id; the optional "add" component is
// an always-editable form for new rows. New rows are built from the template
// named by the list's data-edit-template.
//
// Sub-actions: add, remove and submit. Changed rows are submitted one by one
// through SubmitRow, which uses the target named by the host's
// data-edit-module-target when present.
type Listing struct {
	Module
	pending []pendingRow
}

type pendingRow struct {
	id     string
	row    *dom.Node
	fields []*dom.Node
	data   Data
	errs   map[string]string
}

// RowSubmitter is implemented by listing variants that submit changed rows
// themselves. SubmitRow must resolve sig exactly once.
type RowSubmitter interface {
	SubmitRow(ctx context.Context, id string, data Data, row *dom.Node, sig *Signal)
}

func newListing(parent Module) Module {
	l := &Listing{Module: parent}
	b := parent.Base()
	b.Handle("add", l.executeAdd)
	b.Handle("remove", l.executeRemove)
	b.Handle(ActionSubmit, l.executeSubmit)
	return l
}

// Init forces the add component into always-editable mode.
func (l *Listing) Init() error {
	if err := l.Module.Init(); err != nil {
		return err
	}
	if add := l.Base().Component(ComponentAdd); add != nil && !ConfigOf(add).Always {
		add.SetAttr(AttrAlways, "yes")
		Reconfigure(add)
	}
	return nil
}

// List returns the rows holder.
func (l *Listing) List() *dom.Node {
	return l.Base().Component(ComponentList)
}

// Rows returns the current rows.
func (l *Listing) Rows() []*dom.Node {
	list := l.List()
	if list == nil {
		return nil
	}
	return list.ElementChildren()
}

// Row returns the row with the given id, or nil.
func (l *Listing) Row(id string) *dom.Node {
	for _, r := range l.Rows() {
		if cfg := ConfigOf(r); cfg.HasID && cfg.ID == id {
			return r
		}
	}
	return nil
}

func rowFields(row *dom.Node) []*dom.Node {
	fields := row.Find(isField)
	if isField(row) {
		fields = append([]*dom.Node{row}, fields...)
	}
	return fields
}

// AddRow builds a row for data, appends it to the list and syncs the host so
// the row's fields follow the host's mode.
func (l *Listing) AddRow(id string, data Data) (*dom.Node, error) {
	b := l.Base()
	ed := b.ed
	list := l.List()
	if list == nil {
		return nil, &TargetError{Kind: "ListingError", Detail: "listing has no list component"}
	}

	var row *dom.Node
	if tmpl := ConfigOf(list).Template; tmpl != "" {
		n, err := ed.templates.Copy(tmpl)
		if err != nil {
			return nil, err
		}
		row = n
	} else {
		row = dom.NewElement("div", dom.Attr{Key: "class", Val: "listing-row"})
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row.Append(dom.NewElement("span",
				dom.Attr{Key: AttrName, Val: k},
				dom.Attr{Key: AttrType, Val: InputString},
			))
		}
	}
	row.SetAttr(AttrID, id)
	Reconfigure(row)

	for _, f := range rowFields(row) {
		name := ConfigOf(f).Name
		v, ok := data[name]
		if !ok {
			continue
		}
		f.SetAttr(AttrValue, toString(v))
		f.SetText(toString(v))
		Reconfigure(f)
	}

	list.Append(row)
	if err := ed.sync(b.Host, nil); err != nil {
		return nil, err
	}
	return row, nil
}

// RemoveRow tears down and detaches the row with the given id.
func (l *Listing) RemoveRow(id string) (*dom.Node, bool) {
	row := l.Row(id)
	if row == nil {
		return nil, false
	}
	l.Base().ed.teardown(row)
	row.Detach()
	return row, true
}

func (l *Listing) executeAdd(ctx context.Context, action Action, trigger, host *dom.Node) error {
	ed := l.Base().ed
	add := l.Base().Component(ComponentAdd)

	data := Data{}
	if add != nil {
		if err := ed.export(add, data); err != nil {
			return err
		}
	}

	var id string
	if cfg := ConfigOf(trigger); cfg.HasID && cfg.ID != "" {
		id = cfg.ID
	} else if v, ok := data.ID(); ok && v != "" {
		id = v
	} else {
		ed.rowSeq++
		id = fmt.Sprintf("row-%d", ed.rowSeq)
	}
	clean := data.Clean()

	ed.later(func() {
		row, err := l.AddRow(id, clean)
		if err != nil {
			action.SignalError(host, asSignalled(err))
			return
		}
		ev := RowEvent{ID: id, Row: row, Data: clean}
		ed.emit(host, EventRowAdd, ev)
		action.SignalSuccess(host, ev)
		if add != nil {
			for _, in := range ed.LiveInputs(add) {
				in.Set(in.Base().Original)
			}
		}
	})
	return nil
}

func (l *Listing) executeRemove(ctx context.Context, action Action, trigger, host *dom.Node) error {
	ed := l.Base().ed
	list := l.List()
	var row *dom.Node
	if list != nil {
		row = trigger.Closest(func(n *dom.Node) bool { return n.Parent == list })
	}
	if row == nil {
		return &TargetError{Kind: "ListingError", Detail: "trigger is not inside a row"}
	}
	id := ConfigOf(row).ID

	ed.later(func() {
		ed.teardown(row)
		row.Detach()
		ev := RowEvent{ID: id, Row: row}
		ed.emit(host, EventRowRemove, ev)
		action.SignalSuccess(host, ev)
	})
	return nil
}

// Prepare snapshots the rows whose inputs changed since they were created.
func (l *Listing) Prepare() error {
	if err := l.Module.Prepare(); err != nil {
		return err
	}
	ed := l.Base().ed
	l.pending = nil
	for _, row := range l.Rows() {
		fields := rowFields(row)
		changed := false
		for _, f := range fields {
			if in := ed.live[f]; in != nil && in.Changed() {
				changed = true
				break
			}
		}
		if !changed {
			continue
		}
		id := ConfigOf(row).ID
		data := Data{}
		errs := ed.exportFields(fields, data)
		data[KeyID] = id
		l.pending = append(l.pending, pendingRow{id: id, row: row, fields: fields, data: data, errs: errs})
	}
	return nil
}

// Pending returns the ids of the rows captured by the last Prepare.
func (l *Listing) Pending() []string {
	ids := make([]string, len(l.pending))
	for i, p := range l.pending {
		ids[i] = p.id
	}
	return ids
}

func (l *Listing) executeSubmit(ctx context.Context, action Action, trigger, host *dom.Node) error {
	b := l.Base()
	ed := b.ed
	pending := l.pending
	l.pending = nil

	if len(pending) == 0 {
		action.SignalSuccess(host, nil)
		l.settled(host, true)
		return nil
	}

	submitter, _ := b.Self().(RowSubmitter)
	if submitter == nil {
		submitter = l
	}

	remaining := len(pending)
	failed := false
	done := func(ok bool) {
		remaining--
		failed = failed || !ok
		if remaining == 0 {
			l.settled(host, !failed)
		}
	}

	for _, p := range pending {
		ed.emit(host, EventRowSubmit, RowEvent{ID: p.id, Row: p.row, Data: p.data.Clean()})
		if len(p.errs) > 0 {
			action.SignalError(host, &ValidationErrors{Errors: p.errs, Export: p.data})
			done(false)
			continue
		}
		sig := ed.newSignal("listing row "+p.id, func(d Data) {
			for _, f := range p.fields {
				if in := ed.live[f]; in != nil {
					in.Base().Original = in.Get()
				}
			}
			action.SignalSuccess(host, RowEvent{ID: p.id, Row: p.row, Data: d})
			done(true)
		}, func(f Failure) {
			action.SignalError(host, f)
			done(false)
		})
		submitter.SubmitRow(ctx, p.id, p.data, p.row, sig)
	}
	return nil
}

// SubmitRow sends the row through the host's module target, or succeeds
// immediately when the host names none.
func (l *Listing) SubmitRow(ctx context.Context, id string, data Data, row *dom.Node, sig *Signal) {
	b := l.Base()
	desc := ConfigOf(b.Host).ModuleTarget
	if desc.IsZero() {
		sig.Success(data)
		return
	}
	t, err := b.ed.newTarget(desc, row, data)
	if err != nil {
		sig.Error(err)
		return
	}
	t.Execute(ctx, sig)
}

// settled returns a host without a target of its own to view mode once every
// row submitted successfully.
func (l *Listing) settled(host *dom.Node, ok bool) {
	if !ok || !ConfigOf(host).Target.IsZero() || ModeOf(host) != ModeEdit {
		return
	}
	if err := l.Base().ed.setMode(host, ModeView, Data{}); err != nil {
		l.Base().ed.log.Error().Err(err).Str("container", describe(host)).Msg("listing commit failed")
	}
}
