package editable

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm/editable/lib/dom"
)

func TestExportViewModeIsNoop(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	out := Data{"keep": 1}
	if err := ed.Export(mustByID(t, doc, "customer"), out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if diff := cmp.Diff(Data{"keep": 1}, out); diff != "" {
		t.Errorf("view mode export changed out (-want +got):\n%s", diff)
	}
}

func TestExportEditMode(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	c := mustByID(t, doc, "customer")
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}

	out := Data{}
	if err := ed.Export(c, out); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := Data{
		"first_name":        "John",
		"last_name":         "Smith",
		"customer":          "123",
		KeyValid:            true,
		KeyValidationErrors: map[string]string{},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExportRequiredField(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	c := mustByID(t, doc, "customer")
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}
	in := setInput(t, ed, doc, "cust", "")

	out := Data{}
	err := ed.Export(c, out)
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected *ValidationErrors, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{"customer": "Input required"}, verrs.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if out.Valid() {
		t.Error("_valid should be false")
	}
	if _, ok := out["first_name"]; ok {
		t.Error("failed export should not carry field values")
	}
	if got := in.Base().Note(); got != "Input required" {
		t.Errorf("field note = %q, want %q", got, "Input required")
	}
}

func TestExportCollectsEveryFailure(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="c" data-edit-target="/x" data-edit-always="yes">
		<span id="mail" data-edit-type="email" data-edit-name="mail">nobody</span>
		<span id="site" data-edit-type="url" data-edit-name="site">has space</span>
		<span id="ok" data-edit-type="string" data-edit-name="ok">fine</span>
	</div>`)

	err := ed.Export(mustByID(t, doc, "c"), Data{})
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected *ValidationErrors, got %v", err)
	}
	want := map[string]string{
		"mail": "Needs to be a valid email address",
		"site": "Needs to be a valid url",
	}
	if diff := cmp.Diff(want, verrs.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if !IsValidation(err) {
		t.Error("IsValidation should recognize the aggregate")
	}
}

func TestExportIdentityAndPayload(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="c" data-edit-target="/x" data-edit-id="42" data-edit-always="yes">
		<span data-edit-type="string" data-edit-name="name">Ann</span>
		<div class="payload"><span data-edit-name="kind"> person </span></div>
	</div>`)

	out := Data{}
	if err := ed.Export(mustByID(t, doc, "c"), out); err != nil {
		t.Fatal(err)
	}
	want := Data{"name": "Ann", "kind": "person", KeyID: "42"}
	if diff := cmp.Diff(want, out.Payload()); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleNoopCycleIsIdempotent(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	rec := record(ed)
	c := mustByID(t, doc, "customer")
	before := dom.OuterHTML(c)

	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}
	if ModeOf(c) != ModeEdit || StateOf(c) != StateEdit {
		t.Fatalf("after first toggle mode=%q state=%q", ModeOf(c), StateOf(c))
	}
	if got := len(ed.LiveInputs(c)); got != 3 {
		t.Errorf("got %d live inputs, want 3", got)
	}
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}

	if after := dom.OuterHTML(c); after != before {
		t.Errorf("no-op edit cycle changed the markup:\nbefore: %s\nafter:  %s", before, after)
	}
	if !rec.has(EventEditCancel) {
		t.Error("leaving edit mode without data should emit edit-cancel")
	}
	if len(ed.LiveInputs(c)) != 0 {
		t.Error("live inputs remain after returning to view mode")
	}
}

func TestToggleCancelRestoresContent(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	c := mustByID(t, doc, "customer")
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}
	setInput(t, ed, doc, "first", "Jane")
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}
	if got := mustByID(t, doc, "first").Text(); got != "John" {
		t.Errorf("cancelled edit shows %q, want John", got)
	}
}

func TestToggledMarkers(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="c" data-edit-target="/x">
		<button id="edit-btn" data-edit-toggled="view">Edit</button>
		<button id="save-btn" data-edit-toggled="edit">Save</button>
	</div>`)
	edit, save := mustByID(t, doc, "edit-btn"), mustByID(t, doc, "save-btn")

	if !edit.Visible() || save.Visible() {
		t.Errorf("view mode: edit visible=%v save visible=%v", edit.Visible(), save.Visible())
	}
	if err := ed.Toggle(mustByID(t, doc, "c")); err != nil {
		t.Fatal(err)
	}
	if edit.Visible() || !save.Visible() {
		t.Errorf("edit mode: edit visible=%v save visible=%v", edit.Visible(), save.Visible())
	}
}

func TestToggleCarriesGroup(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="a" data-edit-target="/a"></div>
		<div id="b" data-edit-target="/b" data-edit-group="#a"></div>
		<div id="c" data-edit-target="/c"></div>`)

	if err := ed.Toggle(mustByID(t, doc, "a")); err != nil {
		t.Fatal(err)
	}
	if ModeOf(mustByID(t, doc, "b")) != ModeEdit {
		t.Error("grouped container should follow into edit mode")
	}
	if ModeOf(mustByID(t, doc, "c")) != ModeView {
		t.Error("ungrouped container should stay in view mode")
	}
	if err := ed.Toggle(mustByID(t, doc, "a")); err != nil {
		t.Fatal(err)
	}
	if ModeOf(mustByID(t, doc, "b")) != ModeView {
		t.Error("grouped container should follow back to view mode")
	}
}

func TestToggleHidesErrorPanel(t *testing.T) {
	ed, doc, _ := newCustomerEditor(t)
	c := mustByID(t, doc, "customer")
	showErrorPanel(c, ErrorPayload{Reason: TypeHTTPError, Info: "500 Internal Server Error"})
	if !errorPanel(c).Visible() {
		t.Fatal("panel should be visible")
	}
	if err := ed.Toggle(c); err != nil {
		t.Fatal(err)
	}
	if errorPanel(c).Visible() {
		t.Error("toggle should hide the error panel")
	}
}

func TestNestedContainersOwnTheirFields(t *testing.T) {
	ed := New()
	doc := mustInit(t, ed, `<div id="outer" data-edit-target="/outer">
		<span id="o" data-edit-type="string" data-edit-name="o">outer</span>
		<div id="inner" data-edit-target="/inner">
			<span id="i" data-edit-type="string" data-edit-name="i">inner</span>
		</div>
	</div>`)

	if err := ed.Toggle(mustByID(t, doc, "outer")); err != nil {
		t.Fatal(err)
	}
	if ed.InputOf(mustByID(t, doc, "o")) == nil {
		t.Error("outer field should be live")
	}
	if ed.InputOf(mustByID(t, doc, "i")) != nil {
		t.Error("inner container's field must not follow the outer container")
	}

	out := Data{}
	if err := ed.Export(mustByID(t, doc, "outer"), out); err != nil {
		t.Fatal(err)
	}
	if _, ok := out["i"]; ok {
		t.Error("outer export should not include the inner container's fields")
	}
}
