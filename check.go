package editable

import (
	"fmt"

	"github.com/pthm/editable/lib/dom"
)

// Problem is a configuration mistake found by Check.
type Problem struct {
	Node    *dom.Node
	Attr    string
	Message string
}

func (p Problem) String() string {
	if p.Attr == "" {
		return fmt.Sprintf("%s: %s", describe(p.Node), p.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", describe(p.Node), p.Attr, p.Message)
}

// Check reports declarative configuration in root that the editor cannot
// honor: unknown action, input and module names, missing templates, dangling
// or circular group references and fields that no container owns. root may
// be checked before or after Init.
func (ed *Editor) Check(root *dom.Node) []Problem {
	var out []Problem
	add := func(n *dom.Node, attr, format string, args ...any) {
		out = append(out, Problem{Node: n, Attr: attr, Message: fmt.Sprintf(format, args...)})
	}

	templates := map[string]bool{}
	for _, holder := range root.Find(dom.Class("editable", "templates")) {
		for _, tmpl := range holder.ElementChildren() {
			if id := tmpl.ID(); id != "" {
				templates[id] = true
			}
		}
	}
	hasTemplate := func(id string) bool { return templates[id] || ed.templates.Has(id) }

	inTemplate := dom.Class("editable", "templates")
	nodes := append([]*dom.Node{root}, root.Find(func(n *dom.Node) bool { return n.IsElement() })...)
	for _, n := range nodes {
		if !n.IsElement() || n.Closest(inTemplate) != nil {
			continue
		}
		cfg := ConfigOf(n)
		if cfg.Action != "" && !ed.actions.Has(cfg.Action) {
			add(n, AttrAction, "unknown action %q", cfg.Action)
		}
		if cfg.Module != "" && !ed.modules.Has(cfg.Module) {
			add(n, AttrModule, "unknown module %q", cfg.Module)
		}
		if cfg.Type != "" && !ed.inputs.Has(cfg.Type) {
			add(n, AttrType, "unknown input type %q", cfg.Type)
		}
		if cfg.Type != "" && cfg.Name == "" {
			add(n, AttrName, "field has no name")
		}
		if cfg.Type != "" && ownerOf(n) == nil {
			add(n, AttrType, "field %q is not inside a container", cfg.Name)
		}
		if cfg.Template != "" && !hasTemplate(cfg.Template) {
			add(n, AttrTemplate, "unknown template %q", cfg.Template)
		}
		if cfg.Group != "" {
			if g := root.Root().ByID(cfg.Group); g == nil || !isContainer(g) {
				add(n, AttrGroup, "group %q does not name a container", cfg.Group)
			} else if groupCycle(n) {
				add(n, AttrGroup, "group %q leads back to this container", cfg.Group)
			}
		}
		if cfg.ModuleAction != "" && n.Closest(isModule) == nil {
			add(n, AttrModuleAction, "module action %q outside a module", cfg.ModuleAction)
		}
	}
	return out
}

// groupCycle reports whether following group references from n returns to n.
func groupCycle(n *dom.Node) bool {
	seen := map[*dom.Node]bool{n: true}
	for cur := n; ; {
		id := ConfigOf(cur).Group
		if id == "" {
			return false
		}
		next := cur.Root().ByID(id)
		if next == nil {
			return false
		}
		if next == n {
			return true
		}
		if seen[next] {
			return false
		}
		seen[next] = true
		cur = next
	}
}
