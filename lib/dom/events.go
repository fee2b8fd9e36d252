package dom

// Event is dispatched by Trigger. It bubbles from Target up through its
// ancestors until a handler calls Stop.
type Event struct {
	Name          string
	Target        *Node
	CurrentTarget *Node
	Payload       any

	stopped bool
}

// Stop prevents the event from reaching further ancestors.
func (e *Event) Stop() {
	e.stopped = true
}

// Handler receives dispatched events.
type Handler func(ev *Event)

// On registers h for events named name.
func (n *Node) On(name string, h Handler) {
	if n.handlers == nil {
		n.handlers = make(map[string][]Handler)
	}
	n.handlers[name] = append(n.handlers[name], h)
}

// Off removes every handler for name.
func (n *Node) Off(name string) {
	delete(n.handlers, name)
}

// Trigger dispatches an event on n and bubbles it to the root.
func (n *Node) Trigger(name string, payload any) *Event {
	ev := &Event{Name: name, Target: n, Payload: payload}
	for c := n; c != nil && !ev.stopped; c = c.Parent {
		hs := c.handlers[name]
		if len(hs) == 0 {
			continue
		}
		ev.CurrentTarget = c
		// handlers registered during dispatch run on the next trigger
		for _, h := range append([]Handler(nil), hs...) {
			h(ev)
		}
	}
	return ev
}
