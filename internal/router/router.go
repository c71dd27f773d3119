// Package router is a thin layer over http.ServeMux that adds method
// helpers, middleware stacks and route groups.
package router

import (
	"io/fs"
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router registers routes on a shared ServeMux. Groups share the mux and
// extend the parent's middleware stack.
type Router struct {
	mux   *http.ServeMux
	stack []Middleware
}

// New returns a Router whose routes all run through mw, outermost first.
func New(mw ...Middleware) *Router {
	return &Router{mux: http.NewServeMux(), stack: mw}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) Get(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, mw...)
}

// Handle registers h for method and pattern. Route middleware runs inside
// the router's stack.
func (r *Router) Handle(method, pattern string, h http.Handler, mw ...Middleware) {
	r.mux.Handle(method+" "+pattern, r.chain(h, mw))
}

// Group returns a Router that adds mw after this router's stack.
func (r *Router) Group(mw ...Middleware) *Router {
	stack := make([]Middleware, 0, len(r.stack)+len(mw))
	return &Router{mux: r.mux, stack: append(append(stack, r.stack...), mw...)}
}

// NotFound handles every request no other route matches. The stack still
// runs, so the page gets a session and CSRF token.
func (r *Router) NotFound(h http.HandlerFunc) {
	r.mux.Handle("/", r.chain(h, nil))
}

// Static serves the files in fsys under prefix. Directory paths are 404.
func (r *Router) Static(prefix string, fsys fs.FS) {
	prefix = strings.TrimSuffix(prefix, "/")
	files := http.FileServerFS(fsys)

	h := http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "" || strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, req)
	}))

	r.mux.Handle("GET "+prefix+"/{file...}", r.chain(h, nil))
}

// chain wraps h so r.stack runs first, then extra, in declaration order.
func (r *Router) chain(h http.Handler, extra []Middleware) http.Handler {
	for i := len(extra) - 1; i >= 0; i-- {
		h = extra[i](h)
	}
	for i := len(r.stack) - 1; i >= 0; i-- {
		h = r.stack[i](h)
	}
	return h
}
