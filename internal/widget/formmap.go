package widget

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Bounds on what one request may ask formTree to build.  An index is an
// allocation size, so it is capped before anything is made.
const (
	maxFormIndex = 1000
	maxFormKeys  = 1000
)

// formTree turns flat url.Values into nested maps so complex parameters can
// be decoded in one pass.  Dots nest objects and key[n] indexes slices:
//
//	contact.email=a@b.c      → {"contact": {"email": "a@b.c"}}
//	items[1]=b&items[0]=a    → {"items": ["a", "b"]}
//
// Only the first value of each key is used.  Keys that clash with an
// earlier shape, or whose index exceeds maxFormIndex, are skipped and
// logged at debug.  At most maxFormKeys keys are considered.
func formTree(values url.Values, log *zap.Logger) map[string]any {
	out := make(map[string]any)
	n := 0
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if n++; n > maxFormKeys {
			log.Debug("form keys truncated", zap.Int("keys", len(values)), zap.Int("limit", maxFormKeys))
			break
		}
		if err := assignPath(out, key, vals[0]); err != nil {
			log.Debug("form key skipped", zap.String("key", key), zap.Error(err))
		}
	}
	return out
}

func assignPath(root map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	cur := root

	for i, part := range parts {
		last := i == len(parts)-1
		isIndex, key, idx := splitIndex(part)
		if isIndex && idx > maxFormIndex {
			return fmt.Errorf("index %d at %q exceeds %d", idx, key, maxFormIndex)
		}

		if !isIndex {
			if last {
				cur[key] = value
				return nil
			}
			if _, ok := cur[key]; !ok {
				cur[key] = make(map[string]any)
			}
			next, ok := cur[key].(map[string]any)
			if !ok {
				return fmt.Errorf("expected map at %q, found %T", key, cur[key])
			}
			cur = next
			continue
		}

		if _, ok := cur[key]; !ok {
			cur[key] = make([]any, idx+1)
		}
		slice, ok := cur[key].([]any)
		if !ok {
			return fmt.Errorf("expected slice at %q, found %T", key, cur[key])
		}
		if idx >= len(slice) {
			grown := make([]any, idx+1)
			copy(grown, slice)
			slice = grown
			cur[key] = slice
		}
		if last {
			slice[idx] = value
			return nil
		}
		if slice[idx] == nil {
			slice[idx] = make(map[string]any)
		}
		next, ok := slice[idx].(map[string]any)
		if !ok {
			return fmt.Errorf("expected map at %s[%d], found %T", key, idx, slice[idx])
		}
		cur = next
	}
	return nil
}

// splitIndex recognises "key[n]" with a non-negative integer n.  Anything
// else, including "key[]", is a plain key.
func splitIndex(part string) (bool, string, int) {
	open := strings.IndexByte(part, '[')
	if open <= 0 || !strings.HasSuffix(part, "]") || open+2 > len(part)-1 {
		return false, part, -1
	}
	n, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || n < 0 {
		return false, part, -1
	}
	return true, part[:open], n
}
