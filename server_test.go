package editable

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pthm/editable/lib/dom"
)

func newTestServer(t *testing.T, ed *Editor, markup string, opts ...ServerOption) *Server {
	t.Helper()
	srv, err := NewServer(ed, []byte("test-key"), opts...)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if _, err := srv.AddPage("customers", strings.NewReader(markup)); err != nil {
		t.Fatalf("AddPage failed: %v", err)
	}
	return srv
}

func mustAct(t *testing.T, srv *Server, trigger string, form map[string]string) *TestResult {
	t.Helper()
	result, err := TestAct(srv, "customers", trigger, form)
	if err != nil {
		t.Fatalf("TestAct(%s) failed: %v", trigger, err)
	}
	return result
}

func TestServerGet(t *testing.T) {
	ed, _, _ := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup, WithPrefix("/admin/"))

	result, err := TestGet(srv, "customers")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsOK() {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if !result.HTMLContainsAll("John", "Smith", `hx-post="/admin/_e/act"`, `hx-target="#customer"`) {
		t.Errorf("unexpected page:\n%s", result.HTML)
	}
	if !result.HasHeader("Content-Type", "text/html; charset=utf-8") {
		t.Errorf("content type = %q", result.Headers.Get("Content-Type"))
	}
}

func TestServerUnknownPage(t *testing.T) {
	ed, _, _ := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)

	result, _ := TestGet(srv, "nope")
	if !result.HasStatus(http.StatusNotFound) {
		t.Errorf("status = %d, want 404", result.StatusCode)
	}
}

func TestServerDuplicatePage(t *testing.T) {
	ed, _, _ := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)
	_, err := srv.AddPage("customers", strings.NewReader("<div></div>"))
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestServerToggleAndSave(t *testing.T) {
	ed, _, capt := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)

	result := mustAct(t, srv, "edit", nil)
	if !result.IsOK() {
		t.Fatalf("toggle status = %d: %s", result.StatusCode, result.HTML)
	}
	if !result.HasEvent(EventActionSuccess + ":toggle") {
		t.Errorf("events = %v", result.TriggeredEvents)
	}
	if el := result.Element("customer"); el == nil || el.FindFirst(dom.HasAttr("name")) == nil {
		t.Fatalf("edit mode response has no inputs:\n%s", result.HTML)
	}
	if !result.HTMLContains(`name="cust"`) {
		t.Error("live inputs should be named after their field")
	}

	result = mustAct(t, srv, "save", map[string]string{"cust": "666"})
	if !result.IsOK() {
		t.Fatalf("save status = %d: %s", result.StatusCode, result.HTML)
	}
	if !result.HasEvent(EventActionSuccess + ":" + ActionSubmit) {
		t.Errorf("events = %v", result.TriggeredEvents)
	}
	if !result.HasFlash(FlashSuccess, "Saved") {
		t.Errorf("flashes = %+v", result.Flashes)
	}
	if got := capt.payloads(); len(got) != 1 || got[0]["customer"] != "666" {
		t.Errorf("target payloads = %v", got)
	}
	if el := result.Element("cust"); el == nil || el.Text() != "666" {
		t.Errorf("committed response:\n%s", result.HTML)
	}
}

func TestServerValidationError(t *testing.T) {
	ed, _, capt := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)

	mustAct(t, srv, "edit", nil)
	result := mustAct(t, srv, "save", map[string]string{"cust": "bla"})

	if !result.IsOK() {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if !result.HasFlash(FlashError, Humanize(TypeValidationErrors)) {
		t.Errorf("flashes = %+v", result.Flashes)
	}
	if !result.HTMLContains("Needs to be a number") {
		t.Error("response should carry the field note")
	}
	if n := len(capt.payloads()); n != 0 {
		t.Errorf("target called %d times", n)
	}
}

func TestServerRejectsBadRequests(t *testing.T) {
	ed, _, _ := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)
	token, err := srv.Ref("customers", "edit")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ref  string
		htmx bool
		want int
	}{
		{"valid", token, true, http.StatusOK},
		{"missing htmx header", token, false, http.StatusBadRequest},
		{"tampered ref", token[:len(token)-2] + "XX", true, http.StatusBadRequest},
		{"missing ref", "", true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{"ref": {tt.ref}}.Encode()
			req := httptest.NewRequest(http.MethodPost, ActionPath, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestServerRefUnknownElement(t *testing.T) {
	ed, _, _ := newCustomerEditor(t)
	srv := newTestServer(t, ed, customerMarkup)
	if _, err := srv.Ref("customers", "missing"); err == nil {
		t.Error("expected an error for an unknown element")
	}
	if _, err := srv.Ref("nope", "edit"); err == nil {
		t.Error("expected an error for an unknown page")
	}
}

func TestServerGroupedOutOfBand(t *testing.T) {
	ed, _, _ := newGroupedEditor(t)
	srv := newTestServer(t, ed, groupedMarkup)

	result := mustAct(t, srv, "edit", nil)
	if !result.IsOK() {
		t.Fatalf("status = %d", result.StatusCode)
	}
	sib := result.Element("sibling")
	if sib == nil {
		t.Fatalf("sibling not swapped:\n%s", result.HTML)
	}
	if got := sib.AttrOr("hx-swap-oob", ""); got != "outerHTML" {
		t.Errorf("sibling hx-swap-oob = %q", got)
	}
	if result.Element("primary").HasAttr("hx-swap-oob") {
		t.Error("main container must not be swapped out of band")
	}
	if page := srv.Page("customers"); page.Doc.ByID("sibling").HasAttr("hx-swap-oob") {
		t.Error("swap marker leaked into the page")
	}

	result = mustAct(t, srv, "save", map[string]string{"a": "uno", "b": "dos"})
	if !result.IsOK() {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if el := result.Element("b"); el == nil || el.Text() != "dos" {
		t.Errorf("grouped value not committed:\n%s", result.HTML)
	}
}

func TestServerTimeout(t *testing.T) {
	ed := New()
	release := make(chan struct{})
	defer close(release)
	if err := ed.HandleTarget("slow", func(ctx context.Context, _ *BaseTarget, p Data) (Data, error) {
		<-release
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, ed, `<div id="c" data-edit-target="slow">
		<button id="save" data-edit-action="submit">Save</button>
	</div>`, WithTimeout(20*time.Millisecond))

	result := mustAct(t, srv, "save", nil)
	if !result.HasStatus(http.StatusGatewayTimeout) {
		t.Errorf("status = %d, want 504", result.StatusCode)
	}
}

func TestServerErrorHandler(t *testing.T) {
	ed := New()
	var got error
	srv := newTestServer(t, ed, `<div id="c" data-edit-target="/x">
		<button id="go" data-edit-action="nope">Go</button>
	</div>`, WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))

	result := mustAct(t, srv, "go", nil)
	if !result.HasStatus(http.StatusTeapot) {
		t.Errorf("status = %d", result.StatusCode)
	}
	if !IsUnknownVariant(got) {
		t.Errorf("handler got %v", got)
	}
}
