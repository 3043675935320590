package utils

import (
	"bytes"
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoPostSyncDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected Content-Type: %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Custom") != "yes" {
			t.Errorf("expected custom header, got %s", r.Header.Get("X-Custom"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"hello"}`))
	}))
	defer server.Close()

	type out struct {
		Value string `json:"value"`
	}

	_, resp, err := DoPostSync[out](context.Background(), server.Client(), server.URL, "key-1",
		map[string]string{"q": "x"}, HeaderOption{Key: "X-Custom", Value: "yes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Value != "hello" {
		t.Errorf("unexpected value: %s", resp.Value)
	}
}

func TestDoPostSyncNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad prompt"}`))
	}))
	defer server.Close()

	type out struct{}
	res, _, err := DoPostSync[out](context.Background(), server.Client(), server.URL, "", nil)
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", res.StatusCode)
	}
	if !strings.Contains(err.Error(), "bad prompt") {
		t.Errorf("error must carry the response body, got %v", err)
	}
}

func TestDoPostRawReturnsAnyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("vendor envelope"))
	}))
	defer server.Close()

	res, body, err := DoPostRaw(context.Background(), server.Client(), server.URL, "", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error here: %v", err)
	}
	if res.StatusCode != http.StatusPaymentRequired {
		t.Errorf("expected status 402, got %d", res.StatusCode)
	}
	if string(body) != "vendor envelope" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestDoGetRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary payload"))
	}))
	defer server.Close()

	_, body, err := DoGetRaw(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "binary payload" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestBuildMultipart(t *testing.T) {
	body, contentType, err := BuildMultipart(
		map[string]string{"prompt": "a fox", "n": "1"},
		[]MultipartFile{{Field: "image", Filename: "image.png", Mime: "image/png", Data: []byte{1, 2, 3}}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatal("invalid content type: " + err.Error())
	}
	if mediaType != "multipart/form-data" {
		t.Errorf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatal("failed to parse multipart body: " + err.Error())
	}
	defer form.RemoveAll()

	if got := form.Value["prompt"]; len(got) != 1 || got[0] != "a fox" {
		t.Errorf("unexpected prompt field: %v", got)
	}
	files := form.File["image"]
	if len(files) != 1 {
		t.Fatalf("expected one image part, got %d", len(files))
	}
	if files[0].Filename != "image.png" {
		t.Errorf("unexpected filename: %s", files[0].Filename)
	}
	if files[0].Header.Get("Content-Type") != "image/png" {
		t.Errorf("unexpected part content type: %s", files[0].Header.Get("Content-Type"))
	}
}
