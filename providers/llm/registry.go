package llm

import (
	"sync"

	"github.com/contentplane/aikit/internal/utils"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() ModelExecutor)

	// Legacy adapter names kept resolvable for callers written against
	// earlier naming conventions.
	aliases = map[string]string{
		"aws":     "bedrock",
		"claude":  "bedrock",
		"google":  "gemini",
		"chatgpt": "openai",
	}
)

// Register makes a model executor available under name. Adapter packages
// call this from init; importing an adapter package is what wires it in,
// the same way database/sql drivers register themselves.
func Register(name string, factory func() ModelExecutor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[utils.SanitizeAdapterName(name)] = factory
}

// Create resolves name to a registered executor. Lookup order: exact
// sanitized name, then legacy alias. Unknown names return nil; the caller
// decides whether that is fatal.
func Create(name string) ModelExecutor {
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

// Resolve returns adapter unchanged when it already is a ModelExecutor,
// resolves it through Create when it is a string, and returns nil otherwise.
func Resolve(adapter any) ModelExecutor {
	switch v := adapter.(type) {
	case ModelExecutor:
		return v
	case string:
		return Create(v)
	default:
		return nil
	}
}

// Registered returns the names of all registered executors.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
