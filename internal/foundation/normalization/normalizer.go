// Package normalization maps loosely written names (flags, env values, config
// strings) onto typed values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer provides type-safe string-to-value lookup with case and
// whitespace folding.
type Normalizer[T comparable] struct {
	name      string
	values    map[string]T
	validKeys []string // Cached for error messages
}

// NewNormalizer creates a normalizer. name is used in error messages; the
// keys of values are folded the same way lookups are.
func NewNormalizer[T comparable](name string, values map[string]T) *Normalizer[T] {
	folded := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		key := fold(k)
		folded[key] = v
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Normalizer[T]{name: name, values: folded, validKeys: keys}
}

// Lookup returns the value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[fold(raw)]
	return v, ok
}

// NormalizeWithError is Lookup with a descriptive error for unknown input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.validKeys, ", "))
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
