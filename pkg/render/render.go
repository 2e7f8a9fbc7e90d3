// Package render fills application templates from a per-job context.
// Templates are read from an fs.FS; names ending in .html, .htm or .xml are
// parsed with html/template and escaped, everything else with text/template.
package render

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"path"
	"referralflow/pkg/serrors"
	"strings"
	"sync"
	texttemplate "text/template"
)

// ErrTemplate marks rendering failures: a missing template, a parse error or
// a variable the template references without a default.
var ErrTemplate = serrors.NewKind("TEMPLATE")

// executor is satisfied by both template flavours.
type executor interface {
	Execute(w io.Writer, data any) error
}

type textExec struct{ t *texttemplate.Template }

func (e textExec) Execute(w io.Writer, data any) error {
	return e.t.Execute(w, data)
}

type htmlExec struct{ t *htmltemplate.Template }

func (e htmlExec) Execute(w io.Writer, data any) error {
	return e.t.Execute(w, data)
}

// Renderer renders named templates. Parsed templates are cached; rendering
// is safe for concurrent use.
type Renderer struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]executor
}

// New returns a Renderer reading templates from fsys.
func New(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys, cache: make(map[string]executor)}
}

// Funcs available to every template.
func Funcs() map[string]any {
	return map[string]any{
		// default returns fallback when value is nil or an empty string.
		"default": func(fallback string, value any) any {
			if value == nil {
				return fallback
			}
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				return fallback
			}

			return value
		},
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
	}
}

// Render executes the template name against data.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", serrors.Wrap(ErrTemplate, err, "could not render template %q", name)
	}

	return buf.String(), nil
}

func (r *Renderer) lookup(name string) (executor, error) {
	r.mu.RLock()
	tpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	src, err := fs.ReadFile(r.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, serrors.Wrap(ErrTemplate, serrors.KindOnly(serrors.ErrNotFound), "template %q does not exist", name)
	}
	if err != nil {
		return nil, serrors.Wrap(ErrTemplate, err, "could not read template %q", name)
	}

	tpl, err = parse(name, string(src))
	if err != nil {
		return nil, serrors.Wrap(ErrTemplate, err, "could not parse template %q", name)
	}

	r.mu.Lock()
	r.cache[name] = tpl
	r.mu.Unlock()

	return tpl, nil
}

func parse(name, src string) (executor, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xml":
		t, err := htmltemplate.New(name).Option("missingkey=error").Funcs(Funcs()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}

		return htmlExec{t: t}, nil
	default:
		t, err := texttemplate.New(name).Option("missingkey=error").Funcs(Funcs()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("text: %w", err)
		}

		return textExec{t: t}, nil
	}
}
