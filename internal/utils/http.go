package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// HeaderOption is an extra request header applied on top of the defaults.
// Providers use it for non-Bearer authentication schemes (X-Api-Key,
// x-goog-api-key, HMAC signatures, ...).
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes
// the response into OutputStruct.
//
// Error handling strategy:
//   - context errors (timeout, cancellation) are propagated immediately
//   - connection failures and non-2xx statuses return an error carrying the
//     response body
//   - response body close errors are logged, never override the primary error
//   - JSON decode errors include a response preview for debugging
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	res, respBody, err := doRequest(ctx, client, http.MethodPost, url, apiKey, "application/json", bytes.NewReader(jsonBody), headers)
	if err != nil {
		return res, nil, err
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// DoPostRaw performs a synchronous HTTP POST and returns the raw response
// body. Used where the provider may answer with binary data (image bytes)
// instead of JSON; callers sniff the body themselves. Non-2xx responses are
// NOT treated as transport errors here: the status and body are returned so
// the caller can surface the provider's error envelope.
func DoPostRaw(ctx context.Context, client *http.Client, url string, apiKey string, contentType string, body io.Reader, headers ...HeaderOption) (*http.Response, []byte, error) {
	return doRequestAnyStatus(ctx, client, http.MethodPost, url, apiKey, contentType, body, headers)
}

// DoGet performs a synchronous HTTP GET and decodes the JSON response into
// OutputStruct.
func DoGet[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	res, respBody, err := doRequest(ctx, client, http.MethodGet, url, apiKey, "", nil, headers)
	if err != nil {
		return res, nil, err
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// DoGetRaw performs a synchronous HTTP GET and returns the raw response body.
func DoGetRaw(ctx context.Context, client *http.Client, url string, headers ...HeaderOption) (*http.Response, []byte, error) {
	return doRequest(ctx, client, http.MethodGet, url, "", "", nil, headers)
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey, contentType string, body io.Reader, headers []HeaderOption) (*http.Response, []byte, error) {
	res, respBody, err := doRequestAnyStatus(ctx, client, method, url, apiKey, contentType, body, headers)
	if err != nil {
		return res, nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, respBody, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, TruncateString(string(respBody), 500))
	}
	return res, respBody, nil
}

func doRequestAnyStatus(ctx context.Context, client *http.Client, method, url, apiKey, contentType string, body io.Reader, headers []HeaderOption) (*http.Response, []byte, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	if err != nil {
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if closeErr := rc.Close(); closeErr != nil {
			// Log the close error, but don't override the main error.
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	slog.Debug("http request completed",
		"method", method, "url", url,
		"status", res.StatusCode,
		"duration", time.Since(requestStart),
		"response_bytes", len(respBody))

	return res, respBody, nil
}

// MultipartFile is one file part of a multipart upload.
type MultipartFile struct {
	Field    string
	Filename string
	Mime     string
	Data     []byte
}

// BuildMultipart assembles a multipart/form-data body in memory from plain
// form fields and file parts, returning the body and its Content-Type header
// (including the boundary). Building in memory means there are no temporary
// files to clean up on any exit path.
func BuildMultipart(fields map[string]string, files []MultipartFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for field, value := range fields {
		if err := w.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("error writing form field %q: %w", field, err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		h.Set("Content-Type", f.Mime)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("error creating file part %q: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("error writing file part %q: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("error finalizing multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
