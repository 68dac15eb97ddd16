package vault

import (
	"context"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

const (
	retryAfter    = 30 * time.Second
	idleAfter     = time.Hour
	renewIncrease = 0 // keep the server-side TTL
)

// keepTokenAlive renews the client token until ctx is done.  A failed or
// finished watcher is replaced after retryAfter; tokens that cannot be
// renewed are re-checked every idleAfter.
func (c *Client) keepTokenAlive(ctx context.Context) {
	for {
		wait := c.watchToken(ctx)
		if wait == 0 {
			return
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// watchToken runs one lifetime watcher and returns how long to wait
// before the next attempt, or 0 when ctx ended.
func (c *Client) watchToken(ctx context.Context) time.Duration {
	sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, renewIncrease)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		c.log.Warn("token renew failed", zap.Error(err))
		return retryAfter
	}
	if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
		c.log.Info("token not renewable", zap.Duration("recheck", idleAfter))
		return idleAfter
	}

	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		c.log.Warn("lifetime watcher", zap.Error(err))
		return retryAfter
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warn("token watcher stopped", zap.Error(err))
			}
			return retryAfter
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debug("token renewed", zap.Int("ttl_s", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}
