// internal/vault/vault.go
//
// Vault secret references for formcheck.
//
// Context
// -------
//   - Config values may name a Vault secret instead of carrying it inline:
//     `vault:<mount>/<path>#<key>`.  Today only database.password does, so
//     the SQL form source never keeps a credential in conf/global.yaml.
//   - References are resolved once at boot.  formcheck holds no long-lived
//     lease, so there is no token renewal and no cache.
//
// Public workflow
// ---------------
//  1. if vault.IsRef(v) { cli, err := vault.New(log.Infof) }
//  2. pw, err := cli.Resolve(ctx, v)
//
// The server address and token come from the SDK's environment variables
// (VAULT_ADDR, VAULT_TOKEN, VAULT_CACERT, ...).
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// RefPrefix marks a config value as a Vault reference.
const RefPrefix = "vault:"

// ErrBadRef is returned for references without a path or key.
var ErrBadRef = errors.New("vault reference must look like vault:<mount>/<path>#<key>")

// Client resolves references against one Vault server.  The zero value
// resolves plain values only.
type Client struct {
	read  func(ctx context.Context, mount, rel string) (map[string]any, error)
	logFn func(string, ...any)
}

// New builds a client from the environment.
func New(logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	return &Client{
		read: func(ctx context.Context, mount, rel string) (map[string]any, error) {
			sec, err := api.KVv2(mount).Get(ctx, rel)
			if err != nil {
				return nil, err
			}
			if sec == nil {
				return nil, vault.ErrSecretNotFound
			}
			return sec.Data, nil
		},
		logFn: logFn,
	}, nil
}

// IsRef reports whether s is a Vault reference.
func IsRef(s string) bool { return strings.HasPrefix(s, RefPrefix) }

// ParseRef splits “vault:secret/formcheck#db_password” into the secret path
// and key.
func ParseRef(ref string) (secretPath, key string, err error) {
	if !IsRef(ref) {
		return "", "", ErrBadRef
	}
	secretPath, key, ok := strings.Cut(strings.TrimPrefix(ref, RefPrefix), "#")
	if !ok || secretPath == "" || key == "" {
		return "", "", ErrBadRef
	}
	return secretPath, key, nil
}

// Resolve returns plain values unchanged and reads references from the
// KV-v2 engine mounted at the first path segment.
func (c *Client) Resolve(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	secretPath, key, err := ParseRef(value)
	if err != nil {
		return "", err
	}
	if c.read == nil {
		return "", errors.New("vault client not configured")
	}

	mount, rel := splitMount(secretPath)
	data, err := c.read(ctx, mount, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.logFn("vault: resolved %s#%s", secretPath, key)
	return sval, nil
}

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}
