package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Renderer manages template parsing and rendering with isolated template sets.
//
// The filesystem is laid out as:
//
//	layout.html           storefront layout, defines "base"
//	partials/*.html       blocks shared by every page and rendered alone for htmx
//	storefront/*.html     storefront pages, keyed "storefront/<name>"
//	admin/layout.html     admin layout, defines "admin_base"
//	admin/*.html          admin pages, keyed "admin/<name>"
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page in fsys once, each into its own clone of
// its layout so pages can redefine the same blocks.
func NewRenderer(fsys fs.FS, funcs template.FuncMap) (*Renderer, error) {
	templates := make(map[string]*template.Template)

	baseTmpl, err := template.New("base").Funcs(funcs).ParseFS(fsys, "layout.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	adminBaseTmpl, err := template.New("admin_base").Funcs(funcs).ParseFS(fsys, "admin/layout.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin layout: %w", err)
	}

	sets := []struct {
		prefix string
		base   *template.Template
	}{
		{"storefront", baseTmpl},
		{"admin", adminBaseTmpl},
	}

	for _, set := range sets {
		pages, err := fs.Glob(fsys, set.prefix+"/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s templates: %w", set.prefix, err)
		}

		for _, page := range pages {
			baseName := path.Base(page)
			if baseName == "layout.html" {
				continue
			}

			pageTmpl, err := set.base.Clone()
			if err != nil {
				return nil, fmt.Errorf("failed to clone template for %s: %w", page, err)
			}

			pageTmpl, err = pageTmpl.ParseFS(fsys, page)
			if err != nil {
				return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			pageName := strings.TrimSuffix(baseName, path.Ext(baseName))
			templates[set.prefix+"/"+pageName] = pageTmpl
		}
	}

	return &Renderer{
		templates: templates,
	}, nil
}

// lookup returns the template set for a named page.
func (r *Renderer) lookup(name string) (*template.Template, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Has reports whether a page is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes a page with its layout and writes it to w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, layoutFor(name), data)
}

// RenderHTTP renders a full page with status 200.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a full page with the given status. The page is
// rendered into a buffer first so a template error still yields a clean 500.
func (r *Renderer) RenderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	r.write(w, status, name, layoutFor(name), data)
}

// RenderPartial renders a single block of a page, for htmx swaps.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name, block string, data interface{}) {
	r.write(w, http.StatusOK, name, block, data)
}

func (r *Renderer) write(w http.ResponseWriter, status int, name, block string, data interface{}) {
	tmpl, err := r.lookup(name)
	if err != nil {
		slog.Error("template lookup failed", "template", name, "error", err)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		slog.Error("template render failed", "template", name, "block", block, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func layoutFor(name string) string {
	if strings.HasPrefix(name, "admin/") {
		return "admin_base"
	}
	return "base"
}
