package dom

// Val returns the live value of a form control: the value attribute of an
// input, the text of a textarea, or the value of the selected option of a
// select (the first option when none is marked).
func (n *Node) Val() string {
	switch n.Tag {
	case "textarea":
		return n.Text()
	case "select":
		opt := n.selectedOption()
		if opt == nil {
			return ""
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return opt.Text()
	default:
		return n.AttrOr("value", "")
	}
}

// SetVal writes the live value of a form control.
func (n *Node) SetVal(v string) {
	switch n.Tag {
	case "textarea":
		n.SetText(v)
	case "select":
		for _, opt := range n.Options() {
			if opt.AttrOr("value", opt.Text()) == v {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	default:
		n.SetAttr("value", v)
	}
}

// Checked reports the checked state of a checkbox or radio input.
func (n *Node) Checked() bool {
	return n.HasAttr("checked")
}

// SetChecked sets the checked state.
func (n *Node) SetChecked(on bool) {
	if on {
		n.SetAttr("checked", "")
		return
	}
	n.RemoveAttr("checked")
}

// Options returns the option elements of a select.
func (n *Node) Options() []*Node {
	return n.Find(Tag("option"))
}

// SelectedOption returns the option that determines Val, or nil.
func (n *Node) SelectedOption() *Node {
	return n.selectedOption()
}

func (n *Node) selectedOption() *Node {
	opts := n.Options()
	for _, o := range opts {
		if o.HasAttr("selected") {
			return o
		}
	}
	if len(opts) > 0 {
		return opts[0]
	}
	return nil
}
