// Package ideogram provides an image provider backed by the Ideogram v3
// API, including masked region editing. Importing the package registers the
// "ideogram" provider.
package ideogram
