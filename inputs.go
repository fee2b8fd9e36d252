package editable

import (
	"regexp"
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// Built-in input type names.
const (
	InputBase   = "base"
	InputString = "string"
	InputEmail  = "email"
	InputURL    = "url"
	InputNumber = "number"
	InputBool   = "bool"
	InputText   = "text"
	InputSelect = "select"
)

func (ed *Editor) registerInputs() {
	r := ed.inputs
	r.MustRegister(InputBase, func(Input) Input { return newBaseInput(ed) })
	r.MustRegister(InputString, func(parent Input) Input { return parent }, InputBase)
	r.MustRegister(InputEmail, func(parent Input) Input { return &emailInput{Input: parent} }, InputString)
	r.MustRegister(InputURL, func(parent Input) Input { return &urlInput{Input: parent} }, InputString)
	r.MustRegister(InputNumber, func(parent Input) Input { return &numberInput{Input: parent} }, InputString)
	r.MustRegister(InputBool, func(parent Input) Input { return &boolInput{Input: parent} }, InputBase)
	r.MustRegister(InputText, func(parent Input) Input { return &textInput{Input: parent} }, InputBase)
	r.MustRegister(InputSelect, func(parent Input) Input { return &selectInput{Input: parent} }, InputBase)
}

type emailInput struct {
	Input
}

func (e *emailInput) Placeholder() string { return "name@domain.com" }

func (e *emailInput) Validate() bool {
	v := toString(e.Base().Self().Get())
	return v == "" || strings.Contains(v, "@")
}

func (e *emailInput) ValidationMessage() string {
	return "Needs to be a valid email address"
}

var (
	schemeRe = regexp.MustCompile(`^[a-zA-Z]+://.+`)
	spaceRe  = regexp.MustCompile(`\s`)
)

type urlInput struct {
	Input
}

func (u *urlInput) Placeholder() string { return "http://" }

// Validate prefixes a missing scheme with http:// before checking for
// whitespace.
func (u *urlInput) Validate() bool {
	self := u.Base().Self()
	v := toString(self.Get())
	if v == "" {
		return true
	}
	if !schemeRe.MatchString(v) {
		v = "http://" + v
		self.Set(v)
	}
	return !spaceRe.MatchString(v)
}

func (u *urlInput) ValidationMessage() string {
	return "Needs to be a valid url"
}

var numberRe = regexp.MustCompile(`^[\d.,-]+$`)

type numberInput struct {
	Input
}

func (n *numberInput) Validate() bool {
	return numberRe.MatchString(n.Base().Element.Val())
}

func (n *numberInput) ValidationMessage() string {
	return "Needs to be a number"
}

type boolInput struct {
	Input
}

func (c *boolInput) Make() *dom.Node {
	return dom.NewElement("input",
		dom.Attr{Key: "class", Val: "editable input-note-relative"},
		dom.Attr{Key: "type", Val: "checkbox"},
	)
}

// Set checks the box for truthy values. A nil value reads the field's
// rendered label.
func (c *boolInput) Set(value any) {
	b := c.Base()
	if value == nil {
		value = strings.TrimSpace(b.Source.Text())
	}
	b.Element.SetChecked(truthy(value))
}

func (c *boolInput) Get() any {
	return c.Base().Element.Checked()
}

func (c *boolInput) Blank() bool {
	return !c.Base().Element.Checked()
}

func (c *boolInput) RequiredMessage() string {
	return "Check required"
}

func (c *boolInput) Label() string {
	return yesNo(c.Base().Element.Checked())
}

func (c *boolInput) Apply(value any) {
	on := c.Base().Element.Checked()
	if value != nil {
		on = truthy(value)
	}
	c.Base().Render(on, yesNo(on))
}

func yesNo(on bool) string {
	if on {
		return "Yes"
	}
	return "No"
}

type textInput struct {
	Input
}

func (t *textInput) Make() *dom.Node {
	return dom.NewElement("textarea")
}

// selectInput chooses one record of a dataset. Until the dataset arrives Get
// reports the requested identifier.
type selectInput struct {
	Input
	want   string
	loaded bool
}

func (s *selectInput) Make() *dom.Node {
	return dom.NewElement("select")
}

func (s *selectInput) Set(value any) {
	b := s.Base()
	s.want = toString(value)
	if s.loaded {
		b.Element.SetVal(s.want)
		return
	}
	if id := ConfigOf(b.Source).Dataset; id != "" {
		b.ed.loadDataset(id)
	}
}

func (s *selectInput) Get() any {
	if !s.loaded {
		return s.want
	}
	return s.Base().Element.Val()
}

func (s *selectInput) Blank() bool {
	return toString(s.Get()) == ""
}

func (s *selectInput) Load(records []Record) {
	el := s.Base().Element
	el.Empty()
	for _, r := range records {
		opt := dom.NewElement("option", dom.Attr{Key: "value", Val: r.ID})
		opt.SetText(r.Name)
		if r.ID == s.want {
			opt.SetAttr("selected", "")
		}
		el.Append(opt)
	}
	s.loaded = true
}

func (s *selectInput) Label() string {
	return s.labelFor(toString(s.Get()))
}

func (s *selectInput) labelFor(id string) string {
	if !s.loaded {
		return id
	}
	for _, opt := range s.Base().Element.Options() {
		if opt.AttrOr("value", "") == id {
			return opt.Text()
		}
	}
	return id
}

func (s *selectInput) Apply(value any) {
	id := toString(s.Get())
	if value != nil {
		id = toString(value)
	}
	s.Base().Render(id, s.labelFor(id))
}
