package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"
	homedir "github.com/mitchellh/go-homedir"
)

// VaultConfig carries connection settings for the Vault-backed store.
type VaultConfig struct {
	// Address is the Vault server address (usually from VAULT_ADDR).
	Address string
	// Token optionally overrides token discovery. When empty, VAULT_TOKEN and
	// then ~/.vault-token (written by "vault login") are consulted.
	Token string
}

// VaultStore is a Store backed by Vault's KV v2 engine.
//
// Construction performs no I/O; the client is built lazily on first Get so
// that preflight checks run before the store is ever touched.
type VaultStore struct {
	cfg VaultConfig

	once    sync.Once
	client  *vault.Client
	initErr error
}

// NewVaultStore constructs a VaultStore from the given configuration.
func NewVaultStore(cfg VaultConfig) *VaultStore {
	return &VaultStore{cfg: cfg}
}

func (s *VaultStore) init() {
	address := strings.TrimSpace(s.cfg.Address)
	if address == "" {
		s.initErr = fmt.Errorf("vault address is required")
		return
	}

	apiCfg := vault.DefaultConfig()
	apiCfg.Address = address
	client, err := vault.NewClient(apiCfg)
	if err != nil {
		s.initErr = fmt.Errorf("create vault client: %w", err)
		return
	}

	token := strings.TrimSpace(s.cfg.Token)
	if token == "" {
		token = client.Token() // NewClient already consulted VAULT_TOKEN
	}
	if token == "" {
		token = tokenFromHelperFile()
	}
	if token != "" {
		client.SetToken(token)
	}

	s.client = client
}

// tokenFromHelperFile reads the token cached by "vault login" when present.
func tokenFromHelperFile() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(home, ".vault-token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// Get fetches one field of the KV v2 secret at path. The first path segment
// is the mount name, e.g. "kv/newsletter" reads secret "newsletter" from the
// "kv" mount.
func (s *VaultStore) Get(ctx context.Context, path, field string) (string, error) {
	s.once.Do(s.init)
	if s.initErr != nil {
		return "", s.initErr
	}

	mount, rest, err := splitMount(path)
	if err != nil {
		return "", err
	}

	secret, err := s.client.KVv2(mount).Get(ctx, rest)
	if err != nil {
		return "", classify(path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("read %s: %w", path, ErrNotFound)
	}

	raw, ok := secret.Data[field]
	if !ok {
		return "", fmt.Errorf("read %s: field %q: %w", path, field, ErrNotFound)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("read %s: field %q is not a string", path, field)
	}
	return value, nil
}

// splitMount separates the KV mount name from the secret path below it.
func splitMount(path string) (string, string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	mount, rest, found := strings.Cut(path, "/")
	if !found || mount == "" || rest == "" {
		return "", "", fmt.Errorf("secret path %q must have the form <mount>/<path>", path)
	}
	return mount, rest, nil
}

// classify maps Vault API failures onto the package error taxonomy.
func classify(path string, err error) error {
	if errors.Is(err, vault.ErrSecretNotFound) {
		return fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	var respErr *vault.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case 403:
			return fmt.Errorf("read %s: %w", path, ErrAuthExpired)
		case 404:
			return fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return fmt.Errorf("read %s: %w: %v", path, ErrUnreachable, err)
}
