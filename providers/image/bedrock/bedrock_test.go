package bedrock

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	goimage "image"
	"image/color"
	"image/png"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/contentplane/aikit/providers/image"
)

type fakeInvoker struct {
	input   *bedrockruntime.InvokeModelInput
	payload []byte
	err     error
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	body, _ := json.Marshal(map[string]any{
		"artifacts": []map[string]string{{"base64": base64.StdEncoding.EncodeToString(f.payload)}},
	})
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := goimage.NewNRGBA(goimage.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal("failed to encode test PNG: " + err.Error())
	}
	return buf.Bytes()
}

func TestGenerateBuildsStabilityPayload(t *testing.T) {
	fake := &fakeInvoker{payload: testPNG(t)}
	p := New().WithClient(fake)

	res, err := p.Generate(context.Background(), "a mountain lake", image.Options{Size: "512x768"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Format != "png" {
		t.Errorf("expected png format, got %s", res.Format)
	}
	if *fake.input.ModelId != defaultGenerateModel {
		t.Errorf("expected default generate model, got %s", *fake.input.ModelId)
	}

	var req generateRequest
	if err := json.Unmarshal(fake.input.Body, &req); err != nil {
		t.Fatal("failed to decode request body: " + err.Error())
	}
	if len(req.TextPrompts) != 1 || req.TextPrompts[0].Text != "a mountain lake" {
		t.Errorf("unexpected text prompts: %+v", req.TextPrompts)
	}
	if req.Width != 512 || req.Height != 768 {
		t.Errorf("expected 512x768, got %dx%d", req.Width, req.Height)
	}
	if req.Steps != 50 {
		t.Errorf("expected default 50 steps, got %d", req.Steps)
	}
	if req.Seed < 0 || req.Seed > 1000000 {
		t.Errorf("seed out of range: %d", req.Seed)
	}
}

func TestGenerateStepsOverride(t *testing.T) {
	fake := &fakeInvoker{payload: testPNG(t)}
	p := New().WithClient(fake)

	_, err := p.Generate(context.Background(), "p", image.Options{Extra: map[string]string{"steps": "25"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var req generateRequest
	if err := json.Unmarshal(fake.input.Body, &req); err != nil {
		t.Fatal("failed to decode request body: " + err.Error())
	}
	if req.Steps != 25 {
		t.Errorf("expected 25 steps, got %d", req.Steps)
	}
}

func TestRemoveBackgroundBuildsRemixPayload(t *testing.T) {
	fake := &fakeInvoker{payload: testPNG(t)}
	p := New().WithClient(fake)

	res, err := p.RemoveBackground(context.Background(), testPNG(t), image.Options{Format: "png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Format != "png" {
		t.Errorf("expected png format, got %s", res.Format)
	}
	if *fake.input.ModelId != defaultRemixModel {
		t.Errorf("expected default remix model, got %s", *fake.input.ModelId)
	}

	var req remixRequest
	if err := json.Unmarshal(fake.input.Body, &req); err != nil {
		t.Fatal("failed to decode request body: " + err.Error())
	}
	if req.MaskSource != "background" {
		t.Errorf("expected background mask source, got %s", req.MaskSource)
	}
	if req.TextPrompts[0].Text != "remove background" {
		t.Errorf("expected default removal prompt, got %s", req.TextPrompts[0].Text)
	}
	if req.OutputFormat != "png" {
		t.Errorf("expected png output format, got %s", req.OutputFormat)
	}
	if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
		t.Error("image payload must be valid base64: " + err.Error())
	}
}

func TestEmptyArtifactsIsError(t *testing.T) {
	p := New().WithClient(&emptyInvoker{})

	_, err := p.Generate(context.Background(), "p", image.Options{})
	if err == nil {
		t.Error("expected error for empty artifacts")
	}
}

type emptyInvoker struct{}

func (emptyInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return &bedrockruntime.InvokeModelOutput{Body: []byte(`{"artifacts":[]}`)}, nil
}
