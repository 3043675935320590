package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/internal/imaging"
	"github.com/contentplane/aikit/providers/image"
)

const (
	defaultGenerateModel = "stability.stable-diffusion-xl-v0"
	defaultRemixModel    = "stability.sd-remix"
	defaultRegion        = "us-east-1"
)

func init() {
	image.Register("bedrock", func() image.Provider { return New() })
}

type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Provider implements the image capability against Stability models on AWS
// Bedrock.
type Provider struct {
	region string

	clientOnce sync.Once
	client     invoker
	clientErr  error
}

// New creates a Bedrock image provider configured from the environment.
// Environment variables:
//   - AWS_BEDROCK_REGION: region override (default us-east-1)
//
// AWS credentials come from the default SDK credential chain.
func New() *Provider {
	return &Provider{
		region: config.Get("AWS_BEDROCK_REGION", defaultRegion),
	}
}

// WithClient injects a Bedrock runtime client, bypassing the default SDK
// configuration. Used in tests.
func (p *Provider) WithClient(client invoker) *Provider {
	p.clientOnce.Do(func() {})
	p.client = client
	return p
}

func (p *Provider) getClient(ctx context.Context) (invoker, error) {
	p.clientOnce.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
		if err != nil {
			p.clientErr = fmt.Errorf("loading AWS configuration: %w", err)
			return
		}
		p.client = bedrockruntime.NewFromConfig(cfg)
	})
	if p.clientErr != nil {
		return nil, p.clientErr
	}
	return p.client, nil
}

type textPrompt struct {
	Text string `json:"text"`
}

type generateRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Steps       int          `json:"steps"`
	Seed        int          `json:"seed"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
}

type remixRequest struct {
	Image        string       `json:"image"`
	MaskSource   string       `json:"mask_source"`
	TextPrompts  []textPrompt `json:"text_prompts"`
	CfgScale     int          `json:"cfg_scale"`
	Steps        int          `json:"steps"`
	Seed         int          `json:"seed"`
	OutputFormat string       `json:"output_format"`
}

type artifactsResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

// Generate produces an image with a Stability diffusion model. The step
// count can be overridden through Extra["steps"].
func (p *Provider) Generate(ctx context.Context, prompt string, opts image.Options) (*image.Result, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	modelID := opts.Model
	if modelID == "" {
		modelID = defaultGenerateModel
	}
	width, height := opts.Dimensions()

	body, err := json.Marshal(generateRequest{
		TextPrompts: []textPrompt{{Text: prompt}},
		CfgScale:    10,
		Steps:       steps(opts, 50),
		Seed:        rand.IntN(1000001),
		Width:       width,
		Height:      height,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	data, err := p.invoke(ctx, client, modelID, body)
	if err != nil {
		return nil, err
	}
	return &image.Result{Data: data, Format: "png"}, nil
}

// RemoveBackground masks out the background with a Stability remix model.
// The input is re-encoded per the alpha policy before upload; the output
// format follows the upload format.
func (p *Provider) RemoveBackground(ctx context.Context, img []byte, opts image.Options) (*image.Result, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	modelID := opts.Model
	if modelID == "" {
		modelID = defaultRemixModel
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "remove background"
	}
	maskSource := opts.Extra["mask_source"]
	if maskSource == "" {
		maskSource = "background"
	}

	encoded, err := imaging.EncodeForUpload(img, opts.Format == "png")
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(remixRequest{
		Image:        base64.StdEncoding.EncodeToString(encoded.Data),
		MaskSource:   maskSource,
		TextPrompts:  []textPrompt{{Text: prompt}},
		CfgScale:     10,
		Steps:        steps(opts, 40),
		Seed:         rand.IntN(1000001),
		OutputFormat: encoded.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	data, err := p.invoke(ctx, client, modelID, body)
	if err != nil {
		return nil, err
	}
	return &image.Result{Data: data, Format: encoded.Format}, nil
}

func (p *Provider) invoke(ctx context.Context, client invoker, modelID string, body []byte) ([]byte, error) {
	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("invoking Bedrock model: %w", err)
	}

	var decoded artifactsResponse
	if err := json.Unmarshal(out.Body, &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON returned by Bedrock: %w", err)
	}
	if len(decoded.Artifacts) == 0 || decoded.Artifacts[0].Base64 == "" {
		return nil, &image.ProviderError{
			Provider: "bedrock",
			Message:  "response contains no artifacts",
		}
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("decoding artifact payload: %w", err)
	}
	return data, nil
}

func steps(opts image.Options, fallback int) int {
	if v := opts.Extra["steps"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
