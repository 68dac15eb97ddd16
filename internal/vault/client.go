// internal/vault/client.go
//
// HashiCorp Vault access for the widget server.
//
// Context
// -------
// Config values of the form `vault:<path>#<key>` are resolved through
// Client.GetKV during config.Load, so the antiforgery key and the
// database password never sit in YAML.  Client satisfies
// config.SecretSource.
//
// Workflow
// --------
//  1. cli, err := vault.New(ctx, vault.WithLogger(zl))
//  2. cfg, err := config.Load(ctx, config.WithSecrets(cli))
//
// New reads VAULT_ADDR, VAULT_TOKEN, and the rest of the standard VAULT_*
// variables.  The token is kept alive by a lifetime watcher until ctx ends.
package vault

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/widgets/internal/config"
)

var _ config.SecretSource = (*Client)(nil)

// Client is safe for concurrent use.
type Client struct {
	api   *vault.Client
	log   *zap.Logger
	renew bool

	mu    sync.RWMutex
	cache map[string]entry // "path#key"
	group singleflight.Group
	now   func() time.Time
}

type entry struct {
	val string
	exp time.Time
}

// Option configures New.
type Option func(*Client)

// WithLogger sets the logger; it is named "vault".
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithAPI replaces the SDK client built from the environment.
func WithAPI(api *vault.Client) Option { return func(c *Client) { c.api = api } }

// WithoutRenewal skips the token lifetime watcher.
func WithoutRenewal() Option { return func(c *Client) { c.renew = false } }

// Enabled reports whether the environment points at a Vault server.
func Enabled() bool { return os.Getenv(vault.EnvVaultAddress) != "" }

// New builds a Client and, unless WithoutRenewal is given, starts token
// renewal bound to ctx.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		log:   zap.NewNop(),
		renew: true,
		cache: make(map[string]entry),
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.Named("vault")

	if c.api == nil {
		cfg := vault.DefaultConfig()
		if cfg.Error != nil {
			return nil, fmt.Errorf("vault: config: %w", cfg.Error)
		}
		api, err := vault.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("vault: client: %w", err)
		}
		c.api = api
	}

	if c.renew {
		go c.keepTokenAlive(ctx)
	}
	return c, nil
}
