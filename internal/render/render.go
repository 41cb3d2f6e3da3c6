// Package render produces the concrete application specification from a template.
//
// Rendering is always single-shot: the template is resolved exactly once and
// the renderer exits, never watching for later changes. The output file either
// appears fully written or not at all.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/newsletter-ops/deployctl/internal/env"
	"github.com/newsletter-ops/deployctl/internal/secrets"
)

// Renderer resolves a template into a concrete specification file.
type Renderer interface {
	RenderOnce(ctx context.Context, templatePath, outputPath string) error
}

// Template is the builtin Renderer. It resolves {{ env }} / {{ envOr }}
// placeholders from the merged variable set and {{ secret }} placeholders
// with one Store lookup each.
type Template struct {
	store secrets.Store
	vars  env.Vars
}

// NewTemplate constructs the builtin renderer from a secret store and variables.
func NewTemplate(store secrets.Store, vars env.Vars) *Template {
	return &Template{store: store, vars: vars}
}

// RenderOnce renders templatePath into outputPath. The whole document is
// resolved in memory first and written through a temp-file rename, so a
// failing placeholder never leaves a partial file behind. An existing output
// file from an earlier run is overwritten.
func (r *Template) RenderOnce(ctx context.Context, templatePath, outputPath string) error {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template %q: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templatePath)).Funcs(r.funcMap(ctx)).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %q: %w", templatePath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return fmt.Errorf("render template %q: %w", templatePath, err)
	}

	return writeAtomic(outputPath, buf.Bytes())
}

func (r *Template) funcMap(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"env": func(key string) (string, error) {
			v, ok := r.vars[key]
			if !ok || v == "" {
				return "", fmt.Errorf("environment variable %q is not set", key)
			}
			return v, nil
		},
		"envOr": func(key, def string) string {
			if v, ok := r.vars[key]; ok && v != "" {
				return v
			}
			return def
		},
		"secret": func(path, field string) (string, error) {
			return r.store.Get(ctx, path, field)
		},
	}
}

// writeAtomic writes data to path via a sibling temp file and rename.
// The rendered spec carries secret material, hence mode 0600.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write rendered spec: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod rendered spec: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close rendered spec: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("move rendered spec to %q: %w", path, err)
	}
	return nil
}
