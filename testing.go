package editable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// TestResult holds the response to a simulated request.
//
// Provides convenience methods for asserting on HTML content, headers,
// status codes, events and flashes.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
}

// TestGet renders a page through the server's handler.
//
//	result, err := editable.TestGet(srv, "customers")
//	if !result.HTMLContains("John") {
//	    t.Fatal("missing customer")
//	}
func TestGet(srv *Server, page string) (*TestResult, error) {
	req := httptest.NewRequest(http.MethodGet, srv.prefix+"/"+page, nil)
	return serve(srv, req), nil
}

// TestAct performs the gesture bound to the trigger with id triggerID, as
// htmx would post it. form is keyed by field element id.
//
//	result, err := editable.TestAct(srv, "customers", "save", map[string]string{
//	    "customer": "666",
//	})
//	if !result.HasEvent("action-success:submit") {
//	    t.Fatal("expected success")
//	}
func TestAct(srv *Server, page, triggerID string, form map[string]string) (*TestResult, error) {
	return TestActWithContext(context.Background(), srv, page, triggerID, form)
}

// TestActWithContext is TestAct with a request context.
func TestActWithContext(ctx context.Context, srv *Server, page, triggerID string, form map[string]string) (*TestResult, error) {
	token, err := srv.Ref(page, triggerID)
	if err != nil {
		return nil, err
	}
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	vals.Set("ref", token)

	req := httptest.NewRequest(http.MethodPost, srv.prefix+ActionPath, strings.NewReader(vals.Encode()))
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return serve(srv, req), nil
}

func serve(srv *Server, req *http.Request) *TestResult {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents = parseTriggerHeader(trigger)
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)
	return result
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent checks if an event was announced in HX-Trigger.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlash checks if a flash message was set with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasFlashLevel checks if any flash message was set with the given level.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// Element returns the element with the given id in the response body.
func (r *TestResult) Element(id string) *dom.Node {
	nodes, err := dom.ParseFragment(r.HTML)
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		if el := n.ByID(id); el != nil {
			return el
		}
	}
	return nil
}

// parseTriggerHeader parses an HX-Trigger value into event names. The value
// is either a JSON object keyed by event name or a comma separated list.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}
	if strings.HasPrefix(trigger, "{") {
		var m map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &m); err != nil {
			return nil
		}
		events := make([]string, 0, len(m))
		for name := range m {
			events = append(events, name)
		}
		sort.Strings(events)
		return events
	}
	parts := strings.Split(trigger, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts toasts from OOB swap HTML.
func parseFlashesFromHTML(html string) []Flash {
	nodes, err := dom.ParseFragment(html)
	if err != nil {
		return nil
	}
	var flashes []Flash
	for _, n := range nodes {
		toasts := n.Find(dom.Class("toast"))
		if n.IsElement() && n.HasClass("toast") {
			toasts = append([]*dom.Node{n}, toasts...)
		}
		for _, t := range toasts {
			for _, c := range t.Classes() {
				if level, ok := strings.CutPrefix(c, "toast-"); ok {
					flashes = append(flashes, Flash{Level: level, Message: t.Text()})
					break
				}
			}
		}
	}
	return flashes
}
