// Package content gates and shapes model observation results before they
// reach the host application's persistence layer. The policy gate and field
// shaping are pure functions; the only side effect is the explicit create
// call against the Store collaborator.
package content
