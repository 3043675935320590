// Package utils contains shared HTTP and string helpers used by the provider
// adapters: generic JSON POST/GET with consistent error handling, raw-body
// requests for providers that answer with binary data, in-memory multipart
// assembly, and adapter-name sanitization for the capability registries.
package utils
