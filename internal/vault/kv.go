package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrKeyNotFound is returned when the secret exists but lacks the key.
var ErrKeyNotFound = errors.New("vault: key not found")

// GetKV returns one string field of a KV-v2 secret.  secretPath starts
// with the mount ("secret/widgets").  With ttl > 0 the value is cached
// for that long; concurrent misses for the same field share one request.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key are required")
	}
	ref := secretPath + "#" + key

	if v, ok := c.cached(ref); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(ref, func() (any, error) {
		val, err := c.read(ctx, secretPath, key)
		if err == nil && ttl > 0 {
			c.mu.Lock()
			c.cache[ref] = entry{val: val, exp: c.now().Add(ttl)}
			c.mu.Unlock()
		}
		return val, err
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) cached(ref string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[ref]
	if !ok || !c.now().Before(e.exp) {
		return "", false
	}
	return e.val, true
}

func (c *Client) read(ctx context.Context, secretPath, key string) (string, error) {
	mount, rel := splitMount(secretPath)
	if rel == "" {
		return "", fmt.Errorf("vault: %q has no secret below the mount", secretPath)
	}

	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", ErrKeyNotFound, secretPath, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: %s#%s is %T, not a string", secretPath, key, raw)
	}
	c.log.Debug("secret read", zap.String("path", secretPath), zap.String("key", key))
	return s, nil
}

// splitMount cuts "secret/widgets/db" into "secret" and "widgets/db".
func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(strings.Trim(p, "/"), "/")
	return mount, rel
}
