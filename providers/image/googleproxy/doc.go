// Package googleproxy provides an image provider that talks to a proxy
// service fronting Google Vertex image models, authenticated with HMAC
// request signatures. Importing the package registers the "googleproxy"
// provider (also reachable through the "google" and "gemini" aliases).
package googleproxy
