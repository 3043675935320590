// Package openai provides an image provider backed by the OpenAI Images
// API. Importing the package registers the "openai" provider.
package openai
