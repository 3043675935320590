// Package awstranscribe provides a transcription provider backed by AWS
// Transcribe. Importing the package registers the "awstranscribe" provider
// (also reachable through the "aws" alias).
package awstranscribe
