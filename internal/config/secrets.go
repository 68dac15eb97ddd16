package config

import (
	"context"
	"fmt"
	"strings"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const vaultPrefix = "vault:"

// parseSecretRef splits "vault:<path>#<key>".  ok is false for plain
// values; a malformed reference returns an error.
func parseSecretRef(s string) (path, key string, ok bool, err error) {
	ref, isRef := strings.CutPrefix(s, vaultPrefix)
	if !isRef {
		return "", "", false, nil
	}
	path, key, found := strings.Cut(ref, "#")
	if !found || path == "" || key == "" {
		return "", "", true, fmt.Errorf("malformed vault reference %q (want vault:<path>#<key>)", s)
	}
	return path, key, true, nil
}

// resolveSecrets replaces every vault reference in k.  Secrets are read
// uncached; Load runs at boot and on SIGHUP only.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, src SecretSource, log *zap.Logger) error {
	for key, val := range k.All() {
		s, isString := val.(string)
		if !isString {
			continue
		}
		path, field, isRef, err := parseSecretRef(s)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		if !isRef {
			continue
		}
		if src == nil {
			return fmt.Errorf("config: %s references Vault but no client is configured", key)
		}
		secret, err := src.GetKV(ctx, path, field, 0)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
		log.Debug("secret resolved", zap.String("key", key), zap.String("path", path))
	}
	return nil
}
