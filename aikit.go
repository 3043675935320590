package aikit

import (
	"github.com/contentplane/aikit/providers/image"
	"github.com/contentplane/aikit/providers/llm"
	"github.com/contentplane/aikit/providers/transcription"

	_ "github.com/contentplane/aikit/providers/image/bedrock"
	_ "github.com/contentplane/aikit/providers/image/googleproxy"
	_ "github.com/contentplane/aikit/providers/image/hotpot"
	_ "github.com/contentplane/aikit/providers/image/ideogram"
	_ "github.com/contentplane/aikit/providers/image/openai"
	_ "github.com/contentplane/aikit/providers/image/removebg"
	_ "github.com/contentplane/aikit/providers/llm/bedrock"
	_ "github.com/contentplane/aikit/providers/llm/gemini"
	_ "github.com/contentplane/aikit/providers/llm/openai"
	_ "github.com/contentplane/aikit/providers/transcription/assemblyai"
	_ "github.com/contentplane/aikit/providers/transcription/awstranscribe"
	_ "github.com/contentplane/aikit/providers/transcription/whisper"
)

// Image resolves an image provider by adapter name. Unknown names return
// nil.
func Image(name string) image.Provider {
	return image.Create(name)
}

// LLM resolves a model executor by adapter name. Unknown names return nil.
func LLM(name string) llm.ModelExecutor {
	return llm.Create(name)
}

// Transcription resolves a transcription provider by adapter name. Unknown
// names return nil.
func Transcription(name string) transcription.Provider {
	return transcription.Create(name)
}
