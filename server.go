package editable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/editable/lib/dom"
)

// ActionPath is the path, below the server prefix, that receives gestures.
const ActionPath = "/_e/act"

// Page is a document served by a Server.
type Page struct {
	ID  string
	Doc *dom.Node
}

// Component renders the whole document.
func (p *Page) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dom.Render(w, p.Doc)
	})
}

type emitted struct {
	node    *dom.Node
	name    string
	payload any
}

// Server serves editable pages to htmx clients. Each gesture is posted to
// ActionPath, run against the page's editor state, settled, and answered
// with the re-rendered container, out-of-band swaps for other containers the
// gesture touched, flash toasts and an HX-Trigger header.
//
// Requests are serialized; the editor is never used concurrently.
type Server struct {
	ed      *Editor
	enc     *Encoder
	prefix  string
	timeout time.Duration
	onError func(w http.ResponseWriter, r *http.Request, err error)

	mu        sync.Mutex
	pages     map[string]*Page
	seq       int
	recording bool
	events    []emitted
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithPrefix mounts the server below prefix, e.g. "/admin".
func WithPrefix(prefix string) ServerOption {
	return func(s *Server) {
		s.prefix = strings.TrimSuffix(prefix, "/")
	}
}

// WithTimeout bounds how long a gesture may wait for its targets.
func WithTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithErrorHandler sets the handler for programming errors raised by
// gestures. The default responds 500.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) ServerOption {
	return func(s *Server) {
		s.onError = fn
	}
}

// NewServer creates a server for ed. key signs trigger references.
func NewServer(ed *Editor, key []byte, opts ...ServerOption) (*Server, error) {
	enc, err := NewEncoder(key)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ed:      ed,
		enc:     enc,
		timeout: 10 * time.Second,
		pages:   make(map[string]*Page),
	}
	for _, opt := range opts {
		opt(s)
	}
	ed.Observe(func(n *dom.Node, name string, payload any) {
		if s.recording {
			s.events = append(s.events, emitted{node: n, name: name, payload: payload})
		}
	})
	return s, nil
}

// Editor returns the server's editor.
func (s *Server) Editor() *Editor { return s.ed }

// AddPage parses markup, initializes it and serves it under id.
func (s *Server) AddPage(id string, markup io.Reader) (*Page, error) {
	doc, err := dom.Parse(markup)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pages[id]; exists {
		return nil, fmt.Errorf("%w: page %q", ErrDuplicateName, id)
	}
	if err := s.ed.Init(doc); err != nil {
		return nil, err
	}
	p := &Page{ID: id, Doc: doc}
	s.pages[id] = p
	s.decorate(p)
	s.ed.log.Info().Str("page", id).Msg("page added")
	return p, nil
}

// Page returns the page registered under id.
func (s *Server) Page(id string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[id]
}

// Ref returns the sealed reference of a trigger element on a page.
func (s *Server) Ref(page, nodeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pages[page]
	if p == nil || p.Doc.ByID(nodeID) == nil {
		return "", fmt.Errorf("editable: no element %q on page %q", nodeID, page)
	}
	return sealRef(s.enc, page, nodeID)
}

// Handler returns the HTTP handler serving pages and gestures.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.prefix+ActionPath, s.handleAction)
	mux.HandleFunc("GET "+s.prefix+"/{page}", s.handlePage)
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pages[r.PathValue("page")]
	if p == nil {
		http.NotFound(w, r)
		return
	}
	s.decorate(p)
	if err := Render(w, r, p.Component()); err != nil {
		s.ed.log.Error().Err(err).Str("page", p.ID).Msg("render failed")
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	// htmx always sends HX-Request; plain cross-site form posts cannot.
	if !IsHTMX(r) {
		http.Error(w, "editable: HX-Request header required", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "editable: malformed form", http.StatusBadRequest)
		return
	}
	rf, err := openRef(s.enc, r.PostFormValue("ref"))
	if err != nil {
		s.ed.log.Warn().Err(err).Msg("rejected gesture")
		http.Error(w, "editable: invalid reference", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pages[rf.Page]
	if p == nil {
		http.NotFound(w, r)
		return
	}
	trigger := p.Doc.ByID(rf.Node)
	if trigger == nil {
		http.NotFound(w, r)
		return
	}
	container := s.ed.ContainerOf(trigger)
	if container == nil {
		s.fail(w, r, ErrNotContainer)
		return
	}
	s.applyForm(container, r.PostForm)

	s.events = nil
	s.recording = true
	defer func() {
		s.recording = false
		s.events = nil
	}()

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if _, err := s.ed.Trigger(ctx, trigger); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.ed.Settle(ctx); err != nil {
		s.fail(w, r, err)
		return
	}

	s.decorate(p)
	events := s.events
	s.recording = false

	if h := BuildTriggerHeader(headerEvents(events)); h != "" {
		w.Header().Set("HX-Trigger", h)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var sb strings.Builder
	sb.WriteString(dom.OuterHTML(container))
	for _, c := range s.touched(p, container, events) {
		sb.WriteString(outOfBand(c, SwapOuter))
	}
	sb.WriteString(RenderFlashesOOB(flashesFor(events)))
	io.WriteString(w, sb.String())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.ed.log.Error().Err(err).Str("path", r.URL.Path).Msg("gesture failed")
	if s.onError != nil {
		s.onError(w, r, err)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		http.Error(w, "editable: timed out waiting for targets", http.StatusGatewayTimeout)
		return
	}
	http.Error(w, "editable: internal error", http.StatusInternalServerError)
}

// decorate gives containers, triggers and live fields stable ids and wires
// triggers to the action endpoint.
func (s *Server) decorate(p *Page) {
	for _, c := range p.Doc.Find(isContainer) {
		s.ensureID(c, "edit-c")
	}
	for _, t := range p.Doc.Find(isTrigger) {
		s.ensureID(t, "edit-t")
		c := s.ed.ContainerOf(t)
		if c == nil {
			continue
		}
		token, err := sealRef(s.enc, p.ID, t.ID())
		if err != nil {
			s.ed.log.Error().Err(err).Msg("sealing trigger reference")
			continue
		}
		include := []string{"#" + c.ID()}
		for _, g := range s.ed.grouped(c) {
			include = append(include, "#"+s.ensureID(g, "edit-c"))
		}
		for k, v := range actionAttrs(s.prefix+ActionPath, token, "#"+c.ID(), strings.Join(include, ", ")) {
			t.SetAttr(k, fmt.Sprint(v))
		}
	}
	for f, in := range s.ed.LiveInputs(p.Doc) {
		in.Base().Element.SetAttr("name", s.ensureID(f, "edit-f"))
	}
}

func (s *Server) ensureID(n *dom.Node, prefix string) string {
	if id := n.ID(); id != "" {
		return id
	}
	s.seq++
	id := fmt.Sprintf("%s-%d", prefix, s.seq)
	n.SetAttr("id", id)
	return id
}

// applyForm copies posted values into the live inputs of container and the
// containers grouped to it. Inputs are keyed by their field's id; an absent
// checkbox is unchecked.
func (s *Server) applyForm(container *dom.Node, form url.Values) {
	roots := append([]*dom.Node{container}, s.ed.grouped(container)...)
	for _, root := range roots {
		for f, in := range s.ed.LiveInputs(root) {
			key := f.ID()
			if key == "" {
				continue
			}
			vals, ok := form[key]
			if in.Base().Element.AttrOr("type", "") == "checkbox" {
				in.Set(ok && len(vals) > 0 && vals[0] != "")
				continue
			}
			if !ok || len(vals) == 0 {
				continue
			}
			in.Set(vals[0])
		}
	}
}

// touched returns the containers, other than main, that received events and
// are still part of the page.
func (s *Server) touched(p *Page, main *dom.Node, events []emitted) []*dom.Node {
	seen := map[*dom.Node]bool{main: true}
	var out []*dom.Node
	for _, e := range events {
		c := s.ed.ContainerOf(e.node)
		if c == nil || seen[c] || c.Root() != p.Doc || main.Contains(c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func headerEvents(events []emitted) []TriggerEvent {
	out := make([]TriggerEvent, 0, len(events))
	for _, e := range events {
		te := TriggerEvent{Name: e.name}
		switch p := e.payload.(type) {
		case ErrorPayload:
			te.Detail = map[string]any{"reason": p.Reason, "info": p.Info}
		case ModeChange:
			te.Detail = map[string]any{"mode": string(p.Mode)}
		case Mode:
			te.Detail = map[string]any{"mode": string(p)}
		case RowEvent:
			te.Detail = map[string]any{"id": p.ID}
		}
		out = append(out, te)
	}
	return out
}

func flashesFor(events []emitted) []Flash {
	var out []Flash
	for _, e := range events {
		switch e.name {
		case EventActionSuccess + ":" + ActionSubmit:
			out = append(out, Flash{Level: FlashSuccess, Message: "Saved"})
		case EventActionError:
			if p, ok := e.payload.(ErrorPayload); ok {
				out = append(out, Flash{Level: FlashError, Message: Humanize(p.Reason)})
			}
		}
	}
	return out
}
