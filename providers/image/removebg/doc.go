// Package removebg provides a background-removal-only image provider backed
// by the Remove.bg API. Importing the package registers the "removebg"
// provider.
package removebg
