package editable

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    editable.Render(w, r, page.Component())
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// TargetID returns the id of the element htmx will swap the response into.
func TargetID(r *http.Request) string {
	return r.Header.Get("HX-Target")
}

// TriggerEvent is one entry of an HX-Trigger header.
type TriggerEvent struct {
	Name   string
	Detail map[string]any
}

// BuildTriggerHeader builds an HX-Trigger header value.
//
// Events without detail produce a comma separated list of names:
//
//	"toggle, action-success:toggle"
//
// As soon as one event carries detail the header is a JSON object keyed by
// event name; detail-less events map to true. Repeated names keep the last
// detail.
func BuildTriggerHeader(events []TriggerEvent) string {
	if len(events) == 0 {
		return ""
	}

	plain := true
	for _, e := range events {
		if e.Detail != nil {
			plain = false
			break
		}
	}
	if plain {
		seen := make(map[string]bool, len(events))
		names := make([]string, 0, len(events))
		for _, e := range events {
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
		return strings.Join(names, ", ")
	}

	merged := make(map[string]any, len(events))
	for _, e := range events {
		if e.Detail != nil {
			merged[e.Name] = e.Detail
		} else if _, ok := merged[e.Name]; !ok {
			merged[e.Name] = true
		}
	}
	data, _ := json.Marshal(merged)
	return string(data)
}
