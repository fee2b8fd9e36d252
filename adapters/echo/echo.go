// Package editableecho provides Echo framework integration for editable
// pages.
//
// Mount the editable surface onto an Echo instance or group:
//
//	e := echo.New()
//	srv, err := editableecho.Mount(e, editable.New())
//	srv.AddPage("customers", markup)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/admin", authMiddleware)
//	srv, err := editableecho.MountGroup(g, ed, editableecho.WithBase("/admin"))
package editableecho

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/editable"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	key    []byte
	base   string
	path   string
	server []editable.ServerOption
}

// WithKey sets the signing key for trigger references.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the URL path, relative to the Echo instance or group, below
// which pages and the action endpoint are served. Defaults to "/edit".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = strings.TrimSuffix(path, "/")
	}
}

// WithBase sets the prefix of the group the server is mounted on, so that
// rendered links are absolute.
func WithBase(prefix string) Option {
	return func(o *options) {
		o.base = strings.TrimSuffix(prefix, "/")
	}
}

// WithServerOptions passes options through to editable.NewServer.
func WithServerOptions(opts ...editable.ServerOption) Option {
	return func(o *options) {
		o.server = append(o.server, opts...)
	}
}

// Mount creates a server for ed and mounts its handler on an Echo instance.
//
//	e := echo.New()
//	srv, err := editableecho.Mount(e, ed)
//
//	// With options:
//	srv, err := editableecho.Mount(e, ed, editableecho.WithKey(key))
func Mount(e *echo.Echo, ed *editable.Editor, opts ...Option) (*editable.Server, error) {
	srv, o, err := newServer(ed, opts)
	if err != nil {
		return nil, err
	}
	e.Any(o.path+"/*", echo.WrapHandler(srv.Handler()))
	return srv, nil
}

// MountGroup creates a server for ed and mounts its handler on an Echo group.
// This allows pages to share middleware with the group (auth, logging, etc.).
//
//	g := e.Group("/admin", authMiddleware)
//	srv, err := editableecho.MountGroup(g, ed, editableecho.WithBase("/admin"))
func MountGroup(g *echo.Group, ed *editable.Editor, opts ...Option) (*editable.Server, error) {
	srv, o, err := newServer(ed, opts)
	if err != nil {
		return nil, err
	}
	g.Any(o.path+"/*", echo.WrapHandler(srv.Handler()))
	return srv, nil
}

func newServer(ed *editable.Editor, opts []Option) (*editable.Server, *options, error) {
	o := &options{path: "/edit"}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, nil, fmt.Errorf("editableecho: failed to generate random key: %w", err)
		}
	}

	srvOpts := append([]editable.ServerOption{editable.WithPrefix(o.base + o.path)}, o.server...)
	srv, err := editable.NewServer(ed, key, srvOpts...)
	if err != nil {
		return nil, nil, err
	}
	return srv, o, nil
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return editableecho.Render(c, srv.Page("customers").Component())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
