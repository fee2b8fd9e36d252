package editable

import (
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// Declarative attributes recognized on markup.
const (
	AttrTarget       = "data-edit-target"
	AttrAction       = "data-edit-action"
	AttrType         = "data-edit-type"
	AttrName         = "data-edit-name"
	AttrRequired     = "data-edit-required"
	AttrGroup        = "data-edit-group"
	AttrModule       = "data-edit-module"
	AttrModuleAction = "data-edit-module-action"
	AttrModuleTarget = "data-edit-module-target"
	AttrComponent    = "data-edit-component"
	AttrAlways       = "data-edit-always"
	AttrID           = "data-edit-id"
	AttrValue        = "data-edit-value"
	AttrDataset      = "data-edit-data"
	AttrTemplate     = "data-edit-template"
	AttrToggled      = "data-edit-toggled"
	AttrPlaceholder  = "data-edit-placeholder"
)

// Descriptor is a parsed target descriptor "kind:arg:arg...". Args holds every
// token including the kind at Args[0].
type Descriptor struct {
	Raw  string
	Args []string
}

// ParseDescriptor splits a target descriptor.
func ParseDescriptor(s string) Descriptor {
	s = strings.TrimSpace(s)
	if s == "" {
		return Descriptor{}
	}
	return Descriptor{Raw: s, Args: strings.Split(s, ":")}
}

// Kind returns the first token.
func (d Descriptor) Kind() string {
	if len(d.Args) == 0 {
		return ""
	}
	return d.Args[0]
}

// IsZero reports an absent descriptor.
func (d Descriptor) IsZero() bool {
	return d.Raw == ""
}

// Config is the declarative configuration of one element, parsed once.
type Config struct {
	Target       Descriptor
	Action       string
	Type         string
	Name         string
	Required     bool
	Group        string
	Module       string
	ModuleAction string
	ModuleTarget Descriptor
	Component    string
	Always       bool
	ID           string
	HasID        bool
	Value        string
	HasValue     bool
	Dataset      string
	Template     string
	Toggled      string
	Placeholder  string
}

// IsContainer reports a submission container or module host.
func (c *Config) IsContainer() bool {
	return !c.Target.IsZero() || c.Module != ""
}

// IsOwner reports an element that owns fields: a target container, a module
// host or a module component.
func (c *Config) IsOwner() bool {
	return c.IsContainer() || c.Component != ""
}

// IsField reports an editable field.
func (c *Config) IsField() bool {
	return c.Type != ""
}

// IsTrigger reports an element bound to an action.
func (c *Config) IsTrigger() bool {
	return c.Action != ""
}

const dataConfig = "edit-config"

// ConfigOf returns the element's configuration, parsing it on first use.
func ConfigOf(n *dom.Node) *Config {
	if c, ok := n.Data(dataConfig).(*Config); ok {
		return c
	}
	c := parseConfig(n)
	if n.IsElement() {
		n.SetData(dataConfig, c)
	}
	return c
}

// Reconfigure drops the cached configuration so attribute changes are seen.
func Reconfigure(n *dom.Node) *Config {
	n.SetData(dataConfig, nil)
	return ConfigOf(n)
}

func parseConfig(n *dom.Node) *Config {
	c := &Config{}
	if !n.IsElement() {
		return c
	}
	get := func(k string) string { return strings.TrimSpace(n.AttrOr(k, "")) }

	c.Target = ParseDescriptor(get(AttrTarget))
	c.Action = get(AttrAction)
	c.Type = get(AttrType)
	c.Name = get(AttrName)
	c.Required = yes(get(AttrRequired))
	c.Group = strings.TrimPrefix(get(AttrGroup), "#")
	c.Module = get(AttrModule)
	c.ModuleAction = get(AttrModuleAction)
	c.ModuleTarget = ParseDescriptor(get(AttrModuleTarget))
	c.Component = get(AttrComponent)
	c.Always = yes(get(AttrAlways))
	c.ID, c.HasID = n.Attr(AttrID)
	c.Value, c.HasValue = n.Attr(AttrValue)
	c.Dataset = get(AttrDataset)
	c.Template = get(AttrTemplate)
	c.Toggled = get(AttrToggled)
	c.Placeholder = get(AttrPlaceholder)
	return c
}

func yes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

// Element classifiers used by queries.
var (
	isContainer = func(n *dom.Node) bool { return n.IsElement() && ConfigOf(n).IsContainer() }
	isOwner     = func(n *dom.Node) bool { return n.IsElement() && ConfigOf(n).IsOwner() }
	isField     = func(n *dom.Node) bool { return n.IsElement() && ConfigOf(n).IsField() }
	isTrigger   = func(n *dom.Node) bool { return n.IsElement() && ConfigOf(n).IsTrigger() }
	isModule    = func(n *dom.Node) bool { return n.IsElement() && ConfigOf(n).Module != "" }
	isTargetBox = func(n *dom.Node) bool { return n.IsElement() && !ConfigOf(n).Target.IsZero() }
)
