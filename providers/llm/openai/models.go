package openai

import "strings"

/*
	OPENAI RESPONSES API - REQUEST TYPES
*/

type responsesRequest struct {
	Model           string      `json:"model"`
	Input           []inputItem `json:"input"`
	MaxOutputTokens int         `json:"max_output_tokens,omitempty"`
	Temperature     float64     `json:"temperature"`
}

type inputItem struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// contentPart is one block of multimodal user content.
type contentPart struct {
	Type     string `json:"type"`                // "input_text" or "input_image"
	Text     string `json:"text,omitempty"`      // for input_text
	ImageURL string `json:"image_url,omitempty"` // data URL, for input_image
}

/*
	OPENAI RESPONSES API - RESPONSE TYPES
*/

type responsesResponse struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Status string       `json:"status"`
	Output []outputItem `json:"output"`
}

type outputItem struct {
	Type    string        `json:"type"` // only "message" items carry text
	Role    string        `json:"role,omitempty"`
	Content []outputBlock `json:"content,omitempty"`
}

type outputBlock struct {
	Type string `json:"type"` // "output_text"
	Text string `json:"text,omitempty"`
}

// text extracts the first output_text block from the first message item.
func (r *responsesResponse) text() string {
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, block := range item.Content {
			if block.Type == "output_text" {
				return strings.TrimSpace(block.Text)
			}
		}
	}
	return ""
}
