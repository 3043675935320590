package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contentplane/aikit/providers/llm"
)

func TestExecuteModelWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New().ExecuteModel(context.Background(), "hi", llm.Inputs{}, llm.Options{})
	if err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestExecuteModelSendsGenerateContentRequest(t *testing.T) {
	var captured generateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("expected x-goog-api-key header 'test-key', got %s", r.Header.Get("x-goog-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header, got %s", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatal("failed to decode request body: " + err.Error())
		}

		w.Header().Set("Content-Type", "application/json")
		response := generateContentResponse{Candidates: []candidate{{
			Content: &content{Role: "model", Parts: []part{
				{Text: "Paris "},
				{Text: "is the capital."},
			}},
		}}}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Fatal("failed to encode response: " + err.Error())
		}
	}))
	defer server.Close()

	e := New().WithAPIKey("test-key").WithBaseURL(server.URL)

	text, err := e.ExecuteModel(context.Background(), "capital of France?", llm.Inputs{}, llm.Options{Model: "gemini-test", MaxTokens: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "Paris is the capital." {
		t.Errorf("expected concatenated candidate parts, got %q", text)
	}
	if len(captured.Contents) != 1 || captured.Contents[0].Role != "user" {
		t.Fatalf("expected a single user content block, got %+v", captured.Contents)
	}
	if captured.Contents[0].Parts[0].Text != "capital of France?" {
		t.Errorf("unexpected prompt part: %+v", captured.Contents[0].Parts[0])
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.MaxOutputTokens != 64 {
		t.Errorf("expected maxOutputTokens 64, got %+v", captured.GenerationConfig)
	}
}

func TestGenerateContentResponseTextEmpty(t *testing.T) {
	r := &generateContentResponse{}
	if text := r.text(); text != "" {
		t.Errorf("expected empty text, got %q", text)
	}

	r = &generateContentResponse{Candidates: []candidate{{}}}
	if text := r.text(); text != "" {
		t.Errorf("expected empty text for candidate without content, got %q", text)
	}
}
