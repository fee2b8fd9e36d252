package editable

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// Input edits, validates and renders one field's value while the field is in
// edit mode. Instances are bound 1:1 to a field and discarded when the field
// returns to view mode.
type Input interface {
	// Make builds the editing widget.
	Make() *dom.Node
	Set(value any)
	Get() any
	// Export is the value placed into the exported data object.
	Export() any
	// Blank is the emptiness test used for required fields.
	Blank() bool
	Validate() bool
	ValidationMessage() string
	RequiredMessage() string
	Placeholder() string
	// Label is the read-only presentation of the current value.
	Label() string
	// Apply renders a committed value back into the field.
	Apply(value any)
	// Changed reports whether the live value differs from the value
	// captured when the input was created.
	Changed() bool
	// Load populates option-like widgets from a dataset.
	Load(records []Record)
	Reset()
	ShowValidationError(msg string)
	Base() *BaseInput
}

// BaseInput is the root input layer. It holds the state shared by every
// variant and dispatches through the assembled variant where a default
// depends on overridable behavior.
type BaseInput struct {
	Kind      string
	Source    *dom.Node // the field element
	Container *dom.Node
	Element   *dom.Node // the editing widget
	Frame     *dom.Node
	Original  any

	ed   *Editor
	self Input
	note *dom.Node
}

func newBaseInput(ed *Editor) *BaseInput {
	return &BaseInput{ed: ed}
}

// Bind implements Binder.
func (b *BaseInput) Bind(self Input, name string) {
	b.self = self
	b.Kind = name
}

// Self returns the fully assembled input.
func (b *BaseInput) Self() Input {
	if b.self == nil {
		return b
	}
	return b.self
}

func (b *BaseInput) Base() *BaseInput { return b }

func (b *BaseInput) Make() *dom.Node {
	return dom.NewElement("input", dom.Attr{Key: "type", Val: "text"})
}

// Set writes value into the widget. A nil value takes the field's current
// text.
func (b *BaseInput) Set(value any) {
	if value == nil {
		b.Element.SetVal(strings.TrimSpace(b.Source.Text()))
		return
	}
	b.Element.SetVal(toString(value))
}

func (b *BaseInput) Get() any {
	return b.Element.Val()
}

func (b *BaseInput) Export() any {
	return b.Self().Get()
}

func (b *BaseInput) Blank() bool {
	return b.Element.Val() == ""
}

func (b *BaseInput) Validate() bool {
	return true
}

func (b *BaseInput) ValidationMessage() string {
	return "Invalid value"
}

func (b *BaseInput) RequiredMessage() string {
	return "Input required"
}

func (b *BaseInput) Placeholder() string {
	return ""
}

func (b *BaseInput) Label() string {
	return toString(b.Self().Get())
}

func (b *BaseInput) Apply(value any) {
	if value == nil {
		value = b.Self().Get()
	}
	b.Render(value, toString(value))
}

func (b *BaseInput) Changed() bool {
	return !reflect.DeepEqual(b.Self().Get(), b.Original)
}

func (b *BaseInput) Load(records []Record) {}

// Render stores value as the field's committed value and renders text into
// the field, through the field's template when it names one.
func (b *BaseInput) Render(value any, text string) {
	b.Source.SetAttr(AttrValue, toString(value))
	cfg := Reconfigure(b.Source)

	if cfg.Template != "" {
		node, err := b.ed.templates.Copy(cfg.Template)
		if err == nil {
			if hook := b.ed.templates.hook(b.Kind, cfg.Template); hook != nil {
				hook(b.Self(), node, value)
			} else {
				fillTemplate(node, text)
			}
			b.Source.ReplaceChildren(node)
			return
		}
		b.ed.log.Warn().Err(err).Str("field", cfg.Name).Msg("falling back to text rendering")
	}
	b.Source.SetText(text)
}

// fillTemplate writes text into the first ".value" element of node, or into
// node itself.
func fillTemplate(node *dom.Node, text string) {
	if slot := node.FindFirst(dom.Class("value")); slot != nil {
		slot.SetText(text)
		return
	}
	node.SetText(text)
}

// ShowValidationError renders an inline note next to the widget. An empty
// msg uses ValidationMessage.
func (b *BaseInput) ShowValidationError(msg string) {
	if msg == "" {
		msg = b.Self().ValidationMessage()
	}
	b.closeNote()
	note := dom.NewElement("div", dom.Attr{Key: "class", Val: "editable input-note validation-error"})
	note.SetText(msg)
	if b.Element.HasClass("input-note-relative") {
		b.Element.InsertAfter(note)
	} else {
		b.Element.InsertBefore(note)
	}
	b.note = note
	b.Element.AddClass("validation-error")
}

func (b *BaseInput) Reset() {
	b.closeNote()
	b.Element.RemoveClass("validation-error")
}

func (b *BaseInput) closeNote() {
	if b.note != nil {
		b.note.Detach()
		b.note = nil
	}
}

// Note returns the text of the validation note currently shown, if any.
func (b *BaseInput) Note() string {
	if b.note == nil {
		return ""
	}
	return b.note.Text()
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "on", "checked":
			return true
		}
	case int:
		return t != 0
	}
	return false
}

// createInput binds a new input instance of kind to field.
func (ed *Editor) createInput(kind string, field, container *dom.Node) (Input, error) {
	in, err := ed.inputs.New(kind)
	if err != nil {
		return nil, err
	}
	cfg := ConfigOf(field)
	b := in.Base()
	b.Source = field
	b.Container = container
	b.Element = in.Make()
	b.Element.SetAttr("name", cfg.Name)
	b.Element.AddClass("editable " + kind)
	b.Element.SetData("edit-input", in)
	b.Frame = dom.NewElement("div", dom.Attr{Key: "class", Val: "editable input-frame"})
	b.Frame.Append(b.Element)

	var value any
	if cfg.HasValue {
		value = cfg.Value
	}
	in.Set(value)
	b.Original = in.Get()

	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = in.Placeholder()
	}
	if placeholder != "" {
		b.Element.SetAttr("placeholder", placeholder)
	}
	return in, nil
}
