// Package bedrock provides an image provider backed by Stability models on
// AWS Bedrock. Importing the package registers the "bedrock" provider (also
// reachable through the "aws" alias).
package bedrock
