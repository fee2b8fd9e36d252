package editable

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"

	"github.com/pthm/editable/lib/dom"
)

func TestIsHTMX(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect bool
	}{
		{"with HX-Request true", "true", true},
		{"with HX-Request false", "false", false},
		{"without header", "", false},
		{"with other value", "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Request", tt.header)
			}

			result := IsHTMX(req)
			if result != tt.expect {
				t.Errorf("IsHTMX() = %v, want %v", result, tt.expect)
			}
		})
	}
}

func TestTargetID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		expect string
	}{
		{"with ID", "customer", "customer"},
		{"without header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Target", tt.header)
			}

			result := TargetID(req)
			if result != tt.expect {
				t.Errorf("TargetID() = %q, want %q", result, tt.expect)
			}
		})
	}
}

func TestRenderHelper(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hi</p>")
		return err
	})

	if err := Render(rec, req, comp); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if rec.Body.String() != "<p>hi</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestBuildTriggerHeader(t *testing.T) {
	tests := []struct {
		name   string
		events []TriggerEvent
		expect string
	}{
		{
			name:   "empty",
			expect: "",
		},
		{
			name:   "single event",
			events: []TriggerEvent{{Name: "toggle"}},
			expect: "toggle",
		},
		{
			name:   "plain events deduplicated",
			events: []TriggerEvent{{Name: "toggle"}, {Name: "action-success:toggle"}, {Name: "toggle"}},
			expect: "toggle, action-success:toggle",
		},
		{
			name:   "event with detail",
			events: []TriggerEvent{{Name: "toggle", Detail: map[string]any{"mode": "edit"}}},
			expect: `{"toggle":{"mode":"edit"}}`,
		},
		{
			name: "mixed events",
			events: []TriggerEvent{
				{Name: "success"},
				{Name: "action-error", Detail: map[string]any{"info": "", "reason": "ValidationErrors"}},
			},
			expect: `{"action-error":{"info":"","reason":"ValidationErrors"},"success":true}`,
		},
		{
			name: "last detail wins",
			events: []TriggerEvent{
				{Name: "listing:row-add", Detail: map[string]any{"id": "1"}},
				{Name: "listing:row-add", Detail: map[string]any{"id": "2"}},
			},
			expect: `{"listing:row-add":{"id":"2"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildTriggerHeader(tt.events)
			if result != tt.expect {
				t.Errorf("BuildTriggerHeader() = %q, want %q", result, tt.expect)
			}
		})
	}
}

func TestAttrHelpers(t *testing.T) {
	tests := []struct {
		name   string
		attrs  templ.Attributes
		expect templ.Attributes
	}{
		{"container", ContainerAttrs("/api/customer"), templ.Attributes{AttrTarget: "/api/customer"}},
		{"module", ModuleAttrs("listing"), templ.Attributes{AttrModule: "listing"}},
		{"required field", FieldAttrs("customer", "number", true), templ.Attributes{AttrName: "customer", AttrType: "number", AttrRequired: "yes"}},
		{"optional field", FieldAttrs("note", "text", false), templ.Attributes{AttrName: "note", AttrType: "text"}},
		{"trigger", TriggerAttrs("submit"), templ.Attributes{AttrAction: "submit"}},
		{"module trigger", ModuleTriggerAttrs("add"), templ.Attributes{AttrAction: ActionModule, AttrModuleAction: "add"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expect, tt.attrs); diff != "" {
				t.Errorf("attributes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestActionAttrs(t *testing.T) {
	attrs := actionAttrs("/_e/act", "tok.sig", "#c", "#c, #d")
	want := map[string]any{
		"hx-post":    "/_e/act",
		"hx-vals":    `{"ref":"tok.sig"}`,
		"hx-target":  "#c",
		"hx-swap":    "outerHTML",
		"hx-include": "#c, #d",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("%s = %v, want %v", k, attrs[k], v)
		}
	}
}

func TestOutOfBand(t *testing.T) {
	n := dom.NewElement("div", dom.Attr{Key: "id", Val: "c"})
	if got := outOfBand(n, SwapOuter); got != `<div id="c" hx-swap-oob="outerHTML"></div>` {
		t.Errorf("outOfBand() = %q", got)
	}
	if n.HasAttr("hx-swap-oob") {
		t.Error("marker left on the node")
	}
}
