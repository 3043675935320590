package openai

import "fmt"

type generationsRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// first returns the base64 payload of the first image, or the API error.
func (r *imagesResponse) first() (string, error) {
	if r.Error != nil {
		return "", fmt.Errorf("OpenAI error: %s", r.Error.Message)
	}
	if len(r.Data) == 0 || r.Data[0].B64JSON == "" {
		return "", fmt.Errorf("OpenAI response contains no image data")
	}
	return r.Data[0].B64JSON, nil
}
