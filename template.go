package editable

import (
	"fmt"
	"sync"

	"github.com/pthm/editable/lib/dom"
)

// RenderHook renders a committed value into a copy of a template.
type RenderHook func(in Input, node *dom.Node, value any)

type hookKey struct {
	inputType  string
	templateID string
}

// Templates is the template repository keyed by template id.
type Templates struct {
	mu    sync.RWMutex
	nodes map[string]*dom.Node
	hooks map[hookKey]RenderHook
}

// NewTemplates creates an empty repository.
func NewTemplates() *Templates {
	return &Templates{
		nodes: make(map[string]*dom.Node),
		hooks: make(map[hookKey]RenderHook),
	}
}

// Register stores node under id. The node is detached from its document.
func (t *Templates) Register(id string, node *dom.Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.nodes[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTemplate, id)
	}
	node.Detach()
	t.nodes[id] = node
	return nil
}

// Get returns the stored template.
func (t *Templates) Get(id string) (*dom.Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return n, nil
}

// Copy returns a fresh detached clone of the template.
func (t *Templates) Copy(id string) (*dom.Node, error) {
	n, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return n.Clone(true), nil
}

// Has reports whether id is registered.
func (t *Templates) Has(id string) bool {
	_, err := t.Get(id)
	return err == nil
}

// Hook sets the render hook used when an input of inputType applies a value
// through template templateID.
func (t *Templates) Hook(inputType, templateID string, fn RenderHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks[hookKey{inputType, templateID}] = fn
}

func (t *Templates) hook(inputType, templateID string) RenderHook {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hooks[hookKey{inputType, templateID}]
}

// Collect registers every element child of ".editable.templates" holders in
// root under its id attribute, then detaches the holders.
func (t *Templates) Collect(root *dom.Node) error {
	for _, holder := range root.Find(dom.Class("editable", "templates")) {
		for _, tmpl := range holder.ElementChildren() {
			id := tmpl.ID()
			if id == "" {
				continue
			}
			tmpl.RemoveAttr("id")
			if err := t.Register(id, tmpl); err != nil {
				return err
			}
		}
		holder.Detach()
	}
	return nil
}
