// Package secrets provides access to the key/value secret store backing deployments.
package secrets

import (
	"context"
	"errors"
	"fmt"
)

// Store resolves a single secret field stored under a path.
type Store interface {
	// Get returns the value of field under path, e.g. ("kv/newsletter", "app_id").
	Get(ctx context.Context, path, field string) (string, error)
}

// Sentinel errors classifying secret lookup failures. Callers match them with errors.Is.
var (
	// ErrNotFound indicates the path or field does not exist in the store.
	ErrNotFound = errors.New("secret not found")
	// ErrAuthExpired indicates the store denied the request; the operator token
	// is missing, expired or lacks the required policy.
	ErrAuthExpired = errors.New("secret store authentication expired or denied")
	// ErrUnreachable indicates the store could not be contacted at all.
	ErrUnreachable = errors.New("secret store unreachable")
)

// Static is an in-memory Store keyed by "path#field". It backs tests and
// offline rehearsals of the pipeline.
type Static map[string]string

// Get implements Store against the in-memory map.
func (s Static) Get(_ context.Context, path, field string) (string, error) {
	v, ok := s[path+"#"+field]
	if !ok {
		return "", fmt.Errorf("read %s field %q: %w", path, field, ErrNotFound)
	}
	return v, nil
}
