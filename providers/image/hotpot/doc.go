// Package hotpot provides an image provider backed by the Hotpot AI API.
// Importing the package registers the "hotpot" provider (also reachable
// through the "hotpotai" alias).
package hotpot
