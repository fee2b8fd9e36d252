package editable

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pthm/editable/lib/dom"
)

const customerMarkup = `<html><body>
<div id="customer" data-edit-target="capture">
  <span id="first" data-edit-type="string" data-edit-name="first_name">John</span>
  <span id="last" data-edit-type="string" data-edit-name="last_name">Smith</span>
  <span id="cust" data-edit-type="number" data-edit-name="customer" data-edit-required="yes">123</span>
  <button id="edit" data-edit-action="toggle-edit">Edit</button>
  <button id="save" data-edit-action="submit">Save</button>
</div>
</body></html>`

// capture is a target body that records every payload it receives.
type capture struct {
	mu  sync.Mutex
	got []Data
	err error
}

func (c *capture) fn(ctx context.Context, t *BaseTarget, payload Data) (Data, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, payload)
	return nil, c.err
}

func (c *capture) payloads() []Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Data(nil), c.got...)
}

// recorder collects emitted events in order.
type recorder struct {
	names    []string
	payloads map[string][]any
}

func record(ed *Editor) *recorder {
	r := &recorder{payloads: make(map[string][]any)}
	ed.Observe(func(n *dom.Node, name string, payload any) {
		r.names = append(r.names, name)
		r.payloads[name] = append(r.payloads[name], payload)
	})
	return r
}

func (r *recorder) has(name string) bool {
	return len(r.payloads[name]) > 0
}

func (r *recorder) last(name string) any {
	ps := r.payloads[name]
	if len(ps) == 0 {
		return nil
	}
	return ps[len(ps)-1]
}

func mustInit(t *testing.T, ed *Editor, markup string) *dom.Node {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := ed.Init(doc); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return doc
}

func mustByID(t *testing.T, doc *dom.Node, id string) *dom.Node {
	t.Helper()
	n := doc.ByID(id)
	if n == nil {
		t.Fatalf("no element #%s", id)
	}
	return n
}

// gesture triggers the element with the given id and settles the editor.
func gesture(t *testing.T, ed *Editor, doc *dom.Node, id string) {
	t.Helper()
	if _, err := ed.Trigger(context.Background(), mustByID(t, doc, id)); err != nil {
		t.Fatalf("Trigger(#%s) failed: %v", id, err)
	}
	settle(t, ed)
}

func settle(t *testing.T, ed *Editor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ed.Settle(ctx); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
}

func setInput(t *testing.T, ed *Editor, doc *dom.Node, fieldID string, value any) Input {
	t.Helper()
	in := ed.InputOf(mustByID(t, doc, fieldID))
	if in == nil {
		t.Fatalf("field #%s has no live input", fieldID)
	}
	in.Set(value)
	return in
}

func newCustomerEditor(t *testing.T) (*Editor, *dom.Node, *capture) {
	t.Helper()
	ed := New()
	c := &capture{}
	if err := ed.HandleTarget("capture", c.fn); err != nil {
		t.Fatalf("HandleTarget failed: %v", err)
	}
	return ed, mustInit(t, ed, customerMarkup), c
}

func TestInitDecoratesContainers(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	c := mustByID(t, doc, "customer")

	if ModeOf(c) != ModeView {
		t.Errorf("ModeOf() = %q, want view", ModeOf(c))
	}
	panel := errorPanel(c)
	if panel == nil {
		t.Fatal("container has no error panel")
	}
	if panel.Visible() {
		t.Error("error panel should start hidden")
	}
	if shim := loadingShim(c); shim == nil || shim.Visible() {
		t.Error("container should have a hidden loading shim")
	}
	if len(ed.LiveInputs(doc)) != 0 {
		t.Error("view mode container should have no live inputs")
	}

	// initializing twice is a no-op
	if err := ed.Init(doc); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if got := len(c.ChildrenMatching(dom.Class("editable", "popin", "error"))); got != 1 {
		t.Errorf("got %d error panels after second Init, want 1", got)
	}
}

func TestInitAlwaysEditable(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="c" data-edit-target="/x" data-edit-always="yes">
		<span id="f" data-edit-type="string" data-edit-name="f">v</span>
	</div>`)

	if ModeOf(mustByID(t, doc, "c")) != ModeEdit {
		t.Error("always-editable container should start in edit mode")
	}
	if ed.InputOf(mustByID(t, doc, "f")) == nil {
		t.Error("always-editable field should have a live input")
	}
	if err := ed.Toggle(mustByID(t, doc, "c")); err != nil {
		t.Fatal(err)
	}
	if ModeOf(mustByID(t, doc, "c")) != ModeEdit {
		t.Error("always-editable container must stay in edit mode")
	}
}

func TestInitUnknownModule(t *testing.T) {
	ed := New()
	doc, err := dom.ParseString(`<div data-edit-module="carousel"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.Init(doc); !IsUnknownVariant(err) {
		t.Errorf("expected ErrUnknownVariant, got: %v", err)
	}
}

func TestTriggerErrors(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)

	if _, err := ed.Trigger(context.Background(), mustByID(t, doc, "first")); !IsUnknownVariant(err) {
		t.Errorf("trigger without action: expected ErrUnknownVariant, got %v", err)
	}

	btn := dom.NewElement("button", dom.Attr{Key: AttrAction, Val: "explode"})
	mustByID(t, doc, "customer").Append(btn)
	if _, err := ed.Trigger(context.Background(), btn); !IsUnknownVariant(err) {
		t.Errorf("unknown action: expected ErrUnknownVariant, got %v", err)
	}

	loose := dom.NewElement("button", dom.Attr{Key: AttrAction, Val: ActionToggle})
	if _, err := ed.Trigger(context.Background(), loose); !errors.Is(err, ErrNotContainer) {
		t.Errorf("trigger outside container: expected ErrNotContainer, got %v", err)
	}
}

func TestTriggerEmitsActionEvent(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	rec := record(ed)

	gesture(t, ed, doc, "edit")

	if !rec.has("action:" + ActionToggle) {
		t.Errorf("missing action:%s event, got %v", ActionToggle, rec.names)
	}
	change, ok := rec.last(EventActionSuccess + ":toggle").(ModeChange)
	if !ok || change.Mode != ModeEdit {
		t.Errorf("action-success:toggle payload = %#v, want edit mode", rec.last(EventActionSuccess+":toggle"))
	}
	if mode, _ := rec.last(EventToggle).(Mode); mode != ModeEdit {
		t.Errorf("toggle payload = %v, want edit", rec.last(EventToggle))
	}
}
