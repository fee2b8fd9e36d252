package editable

import (
	"context"
	"strings"

	"github.com/pthm/editable/lib/dom"
)

// Built-in target kinds.
const (
	TargetBase = "base"
	TargetPost = "XHRPost"
)

// Target is a submission destination. Setup captures the data to submit;
// Execute performs the side effect and reports exactly one outcome through
// sig, from any goroutine.
type Target interface {
	Setup(desc Descriptor, source *dom.Node, data Data) error
	Execute(ctx context.Context, sig *Signal)
	Base() *BaseTarget
}

// BaseTarget is the root target layer. Executing it succeeds immediately with
// the captured data.
type BaseTarget struct {
	Kind       string
	Descriptor Descriptor
	Source     *dom.Node
	Data       Data

	ed   *Editor
	self Target
}

// Bind implements Binder.
func (t *BaseTarget) Bind(self Target, name string) {
	t.self = self
	t.Kind = name
}

// Self returns the fully assembled target.
func (t *BaseTarget) Self() Target {
	if t.self == nil {
		return t
	}
	return t.self
}

func (t *BaseTarget) Base() *BaseTarget { return t }

// Setup records the descriptor and source. A nil data exports the source,
// which may fail with *ValidationErrors.
func (t *BaseTarget) Setup(desc Descriptor, source *dom.Node, data Data) error {
	t.Descriptor = desc
	t.Source = source
	if data == nil {
		data = Data{}
		if err := t.ed.export(source, data); err != nil {
			return err
		}
	}
	t.Data = data
	return nil
}

func (t *BaseTarget) Execute(ctx context.Context, sig *Signal) {
	sig.Success(t.Data)
}

// Args returns the descriptor tokens after the kind.
func (t *BaseTarget) Args() []string {
	if len(t.Descriptor.Args) < 2 {
		return nil
	}
	return t.Descriptor.Args[1:]
}

// postTarget submits the payload through the editor's transport.
type postTarget struct {
	Target
}

// URL is the descriptor's arguments when the descriptor names this kind, and
// the whole descriptor otherwise. The fallback keeps colons, so
// "/api/save:extra" posts to "/api/save:extra" rather than to "/api/save",
// and absolute URLs such as "https://host/save" survive intact.
func (p *postTarget) URL() string {
	b := p.Base()
	if b.Descriptor.Kind() == b.Kind {
		return strings.Join(b.Args(), ":")
	}
	return b.Descriptor.Raw
}

func (p *postTarget) Execute(ctx context.Context, sig *Signal) {
	b := p.Base()
	url := p.URL()
	payload := b.Data.Payload()
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, err := b.ed.transport.Post(ctx, url, payload); err != nil {
			sig.Error(transportFailure(err, payload))
			return
		}
		sig.Success(b.Data)
	}()
}

// TargetFunc is the body of a custom target. It runs on its own goroutine and
// receives the payload without validation bookkeeping. A nil result reports
// the captured data.
type TargetFunc func(ctx context.Context, t *BaseTarget, payload Data) (Data, error)

type funcTarget struct {
	Target
	fn TargetFunc
}

func (f *funcTarget) Execute(ctx context.Context, sig *Signal) {
	b := f.Base()
	ctx = context.WithoutCancel(ctx)
	go func() {
		out, err := f.fn(ctx, b, b.Data.Payload())
		if err != nil {
			sig.Error(err)
			return
		}
		if out == nil {
			out = b.Data
		}
		sig.Success(out)
	}()
}

// HandleTarget registers fn as target kind name.
func (ed *Editor) HandleTarget(name string, fn TargetFunc) error {
	return ed.targets.Register(name, func(parent Target) Target {
		return &funcTarget{Target: parent, fn: fn}
	}, TargetBase)
}

func (ed *Editor) registerTargets() {
	ed.targets.MustRegister(TargetBase, func(Target) Target { return &BaseTarget{ed: ed} })
	ed.targets.MustRegister(TargetPost, func(parent Target) Target { return &postTarget{Target: parent} }, TargetBase)
}

// newTarget builds the target named by desc and captures its data. Kinds
// that are not registered fall back to the poster with the descriptor as
// URL.
func (ed *Editor) newTarget(desc Descriptor, source *dom.Node, data Data) (Target, error) {
	kind := desc.Kind()
	if !ed.targets.Has(kind) {
		kind = TargetPost
	}
	t, err := ed.targets.New(kind)
	if err != nil {
		return nil, err
	}
	if err := t.Setup(desc, source, data); err != nil {
		return nil, err
	}
	return t, nil
}
