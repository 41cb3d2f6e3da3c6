package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newsletter-ops/deployctl/internal/env"
	"github.com/newsletter-ops/deployctl/internal/secrets"
)

const specTemplate = `name: {{ envOr "APP_NAME" "newsletter" }}
envs:
  - key: APP_APPLICATION__BASE_URL
    value: {{ env "APP_BASE_URL" }}
  - key: APP_EMAIL_CLIENT__AUTHORIZATION_TOKEN
    value: {{ secret "kv/newsletter" "authorization_token" }}
`

func writeTemplate(t *testing.T, content string) (templatePath, outputPath string) {
	t.Helper()
	dir := t.TempDir()
	templatePath = filepath.Join(dir, "spec.yaml.tpl")
	if err := os.WriteFile(templatePath, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return templatePath, filepath.Join(dir, "spec.yaml")
}

func TestRenderOnceResolvesSecretsAndEnv(t *testing.T) {
	store := secrets.Static{"kv/newsletter#authorization_token": "tok-123"}
	vars := env.Vars{"APP_BASE_URL": "https://news.example.com"}
	tpl, out := writeTemplate(t, specTemplate)

	r := NewTemplate(store, vars)
	if err := r.RenderOnce(context.Background(), tpl, out); err != nil {
		t.Fatalf("render: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(got), "value: tok-123") {
		t.Fatalf("output missing resolved secret:\n%s", got)
	}
	if !strings.Contains(string(got), "value: https://news.example.com") {
		t.Fatalf("output missing resolved env value:\n%s", got)
	}
	if strings.Contains(string(got), "{{") {
		t.Fatalf("output still contains placeholders:\n%s", got)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("output mode=%o, want 0600", perm)
	}
}

func TestRenderOnceIsDeterministic(t *testing.T) {
	store := secrets.Static{"kv/newsletter#authorization_token": "tok-123"}
	vars := env.Vars{"APP_BASE_URL": "https://news.example.com"}
	tpl, out := writeTemplate(t, specTemplate)

	r := NewTemplate(store, vars)
	if err := r.RenderOnce(context.Background(), tpl, out); err != nil {
		t.Fatalf("first render: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}

	if err := r.RenderOnce(context.Background(), tpl, out); err != nil {
		t.Fatalf("second render: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("renders differ with unchanged inputs")
	}
}

func TestRenderOnceMissingSecretLeavesNoFile(t *testing.T) {
	store := secrets.Static{}
	vars := env.Vars{"APP_BASE_URL": "https://news.example.com"}
	tpl, out := writeTemplate(t, specTemplate)

	r := NewTemplate(store, vars)
	err := r.RenderOnce(context.Background(), tpl, out)
	if err == nil {
		t.Fatalf("expected error for missing secret")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("partial output file exists after failed render")
	}

	// No stray temp files either.
	entries, readErr := os.ReadDir(filepath.Dir(out))
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(tpl) {
			t.Fatalf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestRenderOnceMissingEnvVarFails(t *testing.T) {
	store := secrets.Static{"kv/newsletter#authorization_token": "tok-123"}
	tpl, out := writeTemplate(t, specTemplate)

	r := NewTemplate(store, env.Vars{})
	err := r.RenderOnce(context.Background(), tpl, out)
	if err == nil {
		t.Fatalf("expected error for unset APP_BASE_URL")
	}
	if !strings.Contains(err.Error(), "APP_BASE_URL") {
		t.Fatalf("error does not name the missing variable: %v", err)
	}
}

func TestRenderOnceOverwritesStaleOutput(t *testing.T) {
	store := secrets.Static{"kv/newsletter#authorization_token": "tok-123"}
	vars := env.Vars{"APP_BASE_URL": "https://news.example.com"}
	tpl, out := writeTemplate(t, specTemplate)

	if err := os.WriteFile(out, []byte("stale spec from a failed run\n"), 0o600); err != nil {
		t.Fatalf("seed stale output: %v", err)
	}

	r := NewTemplate(store, vars)
	if err := r.RenderOnce(context.Background(), tpl, out); err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(got), "stale spec") {
		t.Fatalf("stale output was not overwritten")
	}
}
