package editable

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// ContainerAttrs marks an element as a container submitting to target.
//
//	<div { editable.ContainerAttrs("/api/customer")... }>
func ContainerAttrs(target string) templ.Attributes {
	return templ.Attributes{AttrTarget: target}
}

// ModuleAttrs marks an element as the host of module name.
func ModuleAttrs(name string) templ.Attributes {
	return templ.Attributes{AttrModule: name}
}

// FieldAttrs marks an element as an editable field.
//
//	<span { editable.FieldAttrs("customer", "number", true)... }>123</span>
func FieldAttrs(name, inputType string, required bool) templ.Attributes {
	attrs := templ.Attributes{
		AttrName: name,
		AttrType: inputType,
	}
	if required {
		attrs[AttrRequired] = "yes"
	}
	return attrs
}

// TriggerAttrs binds an element to action.
//
//	<button { editable.TriggerAttrs("submit")... }>Save</button>
func TriggerAttrs(action string) templ.Attributes {
	return templ.Attributes{AttrAction: action}
}

// ModuleTriggerAttrs binds an element to a sub-action of the hosting module.
func ModuleTriggerAttrs(moduleAction string) templ.Attributes {
	return templ.Attributes{
		AttrAction:       ActionModule,
		AttrModuleAction: moduleAction,
	}
}

// actionAttrs wires a trigger to the gesture endpoint. The sealed reference
// travels in hx-vals; the containers named by include contribute their
// inputs.
func actionAttrs(path, token, target, include string) templ.Attributes {
	vals, _ := json.Marshal(map[string]string{"ref": token})
	return templ.Attributes{
		"hx-post":    path,
		"hx-vals":    string(vals),
		"hx-target":  target,
		"hx-swap":    string(SwapOuter),
		"hx-include": include,
	}
}
