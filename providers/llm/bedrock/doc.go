// Package bedrock provides a model executor backed by AWS Bedrock running
// Anthropic Claude models via the legacy completion API.
//
// Importing the package registers the "bedrock" executor (also reachable
// through the "aws" and "claude" aliases).
package bedrock
