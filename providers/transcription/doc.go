// Package transcription defines the transcription capability: submitting
// audio for speech-to-text and fetching the resulting transcript behind a
// provider-neutral interface.
//
// All adapters follow a two-phase job model, even for vendors whose APIs
// are synchronous: Transcribe returns job metadata with an ID, Fetch
// retrieves the transcript by that ID. Adapter packages under
// providers/transcription register themselves on import.
package transcription
