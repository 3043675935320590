package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/contentplane/aikit/config"
	"github.com/contentplane/aikit/providers/llm"
)

const (
	defaultModelID   = "anthropic.claude-3-sonnet-20240229-v1:0"
	defaultRegion    = "us-east-1"
	defaultMaxTokens = 3000
)

func init() {
	llm.Register("bedrock", func() llm.ModelExecutor { return New() })
}

// invoker is the slice of the Bedrock runtime client this adapter uses.
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Executor implements the llm.ModelExecutor interface against AWS Bedrock
// running Anthropic Claude models with the legacy completion payload.
type Executor struct {
	region  string
	modelID string

	clientOnce sync.Once
	client     invoker
	clientErr  error
}

// New creates a Bedrock executor configured from the environment.
// Environment variables:
//   - AWS_BEDROCK_REGION: region override (default us-east-1)
//   - AWS_BEDROCK_LLM_MODEL_ID: model override
//
// AWS credentials come from the default SDK credential chain.
func New() *Executor {
	return &Executor{
		region:  config.Get("AWS_BEDROCK_REGION", defaultRegion),
		modelID: config.Get("AWS_BEDROCK_LLM_MODEL_ID", defaultModelID),
	}
}

// WithClient injects a Bedrock runtime client, bypassing the default SDK
// configuration. Used in tests.
func (e *Executor) WithClient(client invoker) *Executor {
	e.clientOnce.Do(func() {})
	e.client = client
	return e
}

func (e *Executor) getClient(ctx context.Context) (invoker, error) {
	e.clientOnce.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(e.region))
		if err != nil {
			e.clientErr = fmt.Errorf("loading AWS configuration: %w", err)
			return
		}
		e.client = bedrockruntime.NewFromConfig(cfg)
	})
	if e.clientErr != nil {
		return nil, e.clientErr
	}
	return e.client, nil
}

// claudeRequest is the legacy Anthropic completion payload.
type claudeRequest struct {
	Prompt            string   `json:"prompt"`
	MaxTokensToSample int      `json:"max_tokens_to_sample"`
	Temperature       float64  `json:"temperature"`
	TopK              int      `json:"top_k"`
	TopP              float64  `json:"top_p"`
	StopSequences     []string `json:"stop_sequences"`
}

// claudeResponse is the legacy Anthropic completion envelope.
type claudeResponse struct {
	Completion string `json:"completion"`
}

// ExecuteModel performs exactly one InvokeModel call. Claude on this payload
// has no vision support: image inputs are replaced with an explicit
// "[Image inputs omitted]" marker rather than silently dropped, so the final
// prompt stays deterministic for identical inputs.
func (e *Executor) ExecuteModel(ctx context.Context, prompt string, inputs llm.Inputs, opts llm.Options) (string, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("\n\nHuman: ")
	b.WriteString(llm.FormatPrompt(prompt, opts))
	b.WriteString("\n\n")

	if inputs.Text != "" {
		b.WriteString(inputs.Text)
		b.WriteString("\n\n")
	}
	if len(inputs.Images) > 0 {
		b.WriteString("[Image inputs omitted]\n\n")
	}
	b.WriteString("Assistant:")

	modelID := opts.Model
	if modelID == "" {
		modelID = e.modelID
	}

	body, err := json.Marshal(claudeRequest{
		Prompt:            b.String(),
		MaxTokensToSample: opts.MaxTokensOrDefault(defaultMaxTokens),
		Temperature:       opts.TemperatureOrDefault(0.5),
		TopK:              250,
		TopP:              0.999,
		StopSequences:     []string{"\n\nHuman:", "\n\nAssistant:"},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoking Bedrock model: %w", err)
	}

	var decoded claudeResponse
	if err := json.Unmarshal(out.Body, &decoded); err != nil {
		return "", fmt.Errorf("invalid JSON returned by Bedrock: %w", err)
	}

	return strings.TrimSpace(decoded.Completion), nil
}
