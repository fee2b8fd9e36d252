package editable

import "github.com/pthm/editable/lib/dom"

// SwapMode is an htmx swap strategy, used for hx-swap on triggers and
// hx-swap-oob on out-of-band fragments.
//
// See https://htmx.org/attributes/hx-swap/.
type SwapMode string

const (
	// SwapOuter replaces the whole element. Containers are always swapped
	// this way so their decoration travels with them.
	SwapOuter SwapMode = "outerHTML"

	// SwapBeforeEnd appends to the target's contents. Flash toasts use it.
	SwapBeforeEnd SwapMode = "beforeend"
)

// outOfBand renders n with an hx-swap-oob marker without leaving the marker
// on the node.
func outOfBand(n *dom.Node, mode SwapMode) string {
	n.SetAttr("hx-swap-oob", string(mode))
	defer n.RemoveAttr("hx-swap-oob")
	return dom.OuterHTML(n)
}
