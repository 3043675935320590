// Package assemblyai provides a transcription provider backed by the
// AssemblyAI v2 API, including speaker diarization and webhook completion.
// Importing the package registers the "assemblyai" provider.
package assemblyai
