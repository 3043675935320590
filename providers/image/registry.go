package image

import (
	"sync"

	"github.com/contentplane/aikit/internal/utils"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Provider)

	// Legacy adapter names kept resolvable for callers written against
	// earlier naming conventions.
	aliases = map[string]string{
		"google":   "googleproxy",
		"gemini":   "googleproxy",
		"aws":      "bedrock",
		"hotpotai": "hotpot",
	}
)

// Register makes an image provider available under name. Adapter packages
// call this from init; importing an adapter package is what wires it in.
func Register(name string, factory func() Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[utils.SanitizeAdapterName(name)] = factory
}

// Create resolves name to a registered provider. Lookup order: exact
// sanitized name, then legacy alias. Unknown names return nil; the caller
// decides whether that is fatal.
func Create(name string) Provider {
	key := utils.SanitizeAdapterName(name)

	registryMu.RLock()
	defer registryMu.RUnlock()

	if factory, ok := registry[key]; ok {
		return factory()
	}
	if alias, ok := aliases[key]; ok {
		if factory, ok := registry[alias]; ok {
			return factory()
		}
	}
	return nil
}

// Resolve returns adapter unchanged when it already is a Provider, resolves
// it through Create when it is a string, and returns nil otherwise.
func Resolve(adapter any) Provider {
	switch v := adapter.(type) {
	case Provider:
		return v
	case string:
		return Create(v)
	default:
		return nil
	}
}

// Registered returns the names of all registered providers.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
