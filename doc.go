// Package editable turns regions of server-held HTML into in-place editable
// forms. Markup declares what is editable through data-edit-* attributes; the
// Editor toggles regions between view and edit mode, validates and exports
// their fields, and submits the result to pluggable targets.
//
// # Core Concepts
//
// A container is an element with a submission target or a module:
//
//	<div id="customer" data-edit-target="XHRPost:/api/customer">
//	    <span data-edit-name="first_name" data-edit-type="string">John</span>
//	    <span data-edit-name="customer" data-edit-type="number" data-edit-required="yes">123</span>
//	    <button data-edit-action="toggle-edit">Edit</button>
//	    <button data-edit-action="submit">Save</button>
//	</div>
//
// Fields are elements carrying data-edit-type. While their container is in
// edit mode each field is bound to an Input, which renders the editing
// widget, validates the live value and renders the committed value back when
// the container returns to view mode.
//
// # Variants
//
// Actions, targets, modules and inputs live in four registries. Every variant
// is registered by name with an optional parent; a variant embeds its parent
// and may call the parent's methods explicitly:
//
//	ed.Actions().MustRegister("confirm-submit", func(parent editable.Action) editable.Action {
//	    return &confirmSubmit{Action: parent}
//	}, editable.ActionSubmit)
//
// Unknown names fail with ErrUnknownVariant, duplicates with ErrDuplicateName.
//
// # Submitting
//
// The submit action exports the container, builds its target, prepares the
// container's modules and then runs three independent units: the target,
// every container grouped to this one through data-edit-group, and every
// prepared module. Each unit reports through the action's success and error
// events on its own. There is no rollback: a primary container that saved
// stays saved when a grouped sibling fails.
//
// Validation and transport failures are Failures and reach the page as
// action-error events. Other errors are programming errors and are returned
// from Trigger.
//
// # Asynchrony
//
// Targets may finish on any goroutine. Their outcomes are queued and applied
// to the document by Settle, so document state is only ever touched by the
// goroutine that owns the Editor:
//
//	ed.Trigger(ctx, saveButton)
//	if err := ed.Settle(ctx); err != nil {
//	    return err
//	}
//
// # Serving
//
// Server exposes pages to htmx clients. Triggers are rendered with hx-post
// attributes carrying a signed reference; each posted gesture is applied,
// settled and answered with the re-rendered container, out-of-band swaps and
// an HX-Trigger header listing the emitted events.
//
//	srv, err := editable.NewServer(ed, key)
//	srv.AddPage("customers", markup)
//	http.Handle("/", srv.Handler())
package editable
