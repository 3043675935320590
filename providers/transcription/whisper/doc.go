// Package whisper provides a transcription provider backed by the OpenAI
// audio transcription API, with optional ffmpeg-based segmentation for long
// sources. Importing the package registers the "whisper" provider (also
// reachable through the "openai" alias).
package whisper
