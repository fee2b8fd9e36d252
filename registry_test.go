package editable

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type greeter interface {
	Greet() string
	Twice() string
}

type baseGreeter struct {
	name string
	self greeter
}

func (b *baseGreeter) Bind(self greeter, name string) {
	b.self = self
	b.name = name
}

func (b *baseGreeter) Greet() string { return "hello" }

// Twice dispatches through the assembled variant.
func (b *baseGreeter) Twice() string { return b.self.Greet() + " " + b.self.Greet() }

type loudGreeter struct {
	greeter
}

func (l *loudGreeter) Greet() string {
	return strings.ToUpper(l.greeter.Greet()) + "!"
}

type politeGreeter struct {
	greeter
}

func (p *politeGreeter) Greet() string {
	return p.greeter.Greet() + ", please"
}

func newGreeterRegistry(t *testing.T) *Registry[greeter] {
	t.Helper()
	r := NewRegistry[greeter]("greeter")
	r.MustRegister("base", func(greeter) greeter { return &baseGreeter{} })
	r.MustRegister("loud", func(p greeter) greeter { return &loudGreeter{greeter: p} }, "base")
	r.MustRegister("polite-loud", func(p greeter) greeter { return &politeGreeter{greeter: p} }, "loud")
	return r
}

func TestRegistryResolve(t *testing.T) {
	r := newGreeterRegistry(t)

	tests := []struct {
		name    string
		greet   string
		twice   string
		lineage []string
	}{
		{"base", "hello", "hello hello", []string{"base"}},
		{"loud", "HELLO!", "HELLO! HELLO!", []string{"base", "loud"}},
		{"polite-loud", "HELLO!, please", "HELLO!, please HELLO!, please", []string{"base", "loud", "polite-loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := r.Resolve(tt.name)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.name, err)
			}
			if diff := cmp.Diff(tt.lineage, v.Lineage()); diff != "" {
				t.Errorf("Lineage() mismatch (-want +got):\n%s", diff)
			}
			g := v.New()
			if got := g.Greet(); got != tt.greet {
				t.Errorf("Greet() = %q, want %q", got, tt.greet)
			}
			if got := g.Twice(); got != tt.twice {
				t.Errorf("Twice() = %q, want %q", got, tt.twice)
			}
		})
	}
}

func TestRegistryInstancesAreFresh(t *testing.T) {
	r := newGreeterRegistry(t)
	a, _ := r.New("loud")
	b, _ := r.New("loud")
	if a == b {
		t.Error("New should build a fresh instance each call")
	}
}

func TestRegistryBindsName(t *testing.T) {
	r := newGreeterRegistry(t)
	g, err := r.New("polite-loud")
	if err != nil {
		t.Fatal(err)
	}
	root := g.(*politeGreeter).greeter.(*loudGreeter).greeter.(*baseGreeter)
	if root.name != "polite-loud" {
		t.Errorf("root layer bound to %q, want %q", root.name, "polite-loud")
	}
}

func TestRegistryErrors(t *testing.T) {
	r := newGreeterRegistry(t)

	if err := r.Register("loud", func(p greeter) greeter { return p }, "base"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate register: expected ErrDuplicateName, got %v", err)
	}
	if err := r.Register("orphan", func(p greeter) greeter { return p }, "missing"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("unknown parent: expected ErrUnknownVariant, got %v", err)
	}
	if _, err := r.Resolve("nope"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Resolve unknown: expected ErrUnknownVariant, got %v", err)
	}
	if _, err := r.New("nope"); !IsUnknownVariant(err) {
		t.Errorf("New unknown: expected ErrUnknownVariant, got %v", err)
	}
	if r.Has("nope") || !r.Has("loud") {
		t.Error("Has reports the wrong names")
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	r := newGreeterRegistry(t)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from duplicate MustRegister")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	r.MustRegister("base", func(greeter) greeter { return &baseGreeter{} })
}

func TestRegistryNames(t *testing.T) {
	r := newGreeterRegistry(t)
	if diff := cmp.Diff([]string{"base", "loud", "polite-loud"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinVariants(t *testing.T) {
	ed := New()
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"actions", ed.Actions().Names(), []string{ActionBase, ActionModule, ActionSubmit, ActionToggle}},
		{"targets", ed.Targets().Names(), []string{TargetPost, TargetBase}},
		{"modules", ed.Modules().Names(), []string{ModuleBase, ModuleListing}},
		{"inputs", ed.Inputs().Names(), []string{InputBase, InputBool, InputEmail, InputNumber, InputSelect, InputString, InputText, InputURL}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.names); diff != "" {
				t.Errorf("registered names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
