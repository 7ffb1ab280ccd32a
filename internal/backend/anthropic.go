package backend

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// quickMaxTokens is the fixed output budget for the quick-path entry point.
const quickMaxTokens = 512

// AnthropicConfig contains configuration for creating an AnthropicCompleter.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock indicates whether to use AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// AnthropicCompleter implements Completer over the Anthropic SDK, with
// optional AWS Bedrock credentials.
type AnthropicCompleter struct {
	inner   anthropic.Client
	bedrock bool
	tracker *TokenTracker
}

// Compile-time verification that AnthropicCompleter implements Completer.
var _ Completer = (*AnthropicCompleter)(nil)

// NewAnthropicCompleter creates a completion backend from the given config.
func NewAnthropicCompleter(cfg AnthropicConfig) (*AnthropicCompleter, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &AnthropicCompleter{
		inner:   anthropic.NewClient(opts...),
		bedrock: cfg.UseAWSBedrock,
		tracker: NewTokenTracker(),
	}, nil
}

// Tracker returns the token tracker for this backend.
func (c *AnthropicCompleter) Tracker() *TokenTracker {
	return c.tracker
}

// Complete turns a prompt and call configuration into response text.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, cfg CallConfig) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.translateModel(anthropic.Model(cfg.Model)),
		MaxTokens: int64(cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemDirective(cfg.Verbosity)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if budget := thinkingBudget(cfg.Reasoning, cfg.MaxTokens); budget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return extractText(resp), nil
}

// QuickComplete is the simplest available entry point: the fast model with
// a minimal fixed configuration and no thinking budget.
func (c *AnthropicCompleter) QuickComplete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.translateModel(anthropic.ModelClaude3_5Haiku20241022),
		MaxTokens: quickMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("quick completion call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return extractText(resp), nil
}

// extractText concatenates the text blocks of a response.
func extractText(resp *anthropic.Message) string {
	var b strings.Builder
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(variant.Text)
		}
	}
	return b.String()
}

// thinkingBudget maps a reasoning effort to a thinking token budget within
// the call's output cap. Budgets under the API minimum of 1024 disable
// thinking entirely, which covers the minimal and low efforts on small
// budgets.
func thinkingBudget(effort models.ReasoningEffort, maxTokens int) int64 {
	var budget int
	switch effort {
	case models.ReasoningMedium:
		budget = maxTokens / 4
	case models.ReasoningHigh:
		budget = maxTokens / 2
	default:
		return 0
	}
	if budget < 1024 {
		return 0
	}
	return int64(budget)
}

// systemDirective maps a verbosity level onto a response-length instruction.
func systemDirective(v models.Verbosity) string {
	base := "You are an analyst assistant for a private lending fund."
	switch v {
	case models.VerbosityLow:
		return base + " Answer in at most a short paragraph."
	case models.VerbosityHigh:
		return base + " Respond in full detail with clear section structure."
	default:
		return base + " Keep responses focused and moderately detailed."
	}
}

// translateModel converts a standard Anthropic model name to the Bedrock
// cross-region inference profile format when Bedrock is in use.
func (c *AnthropicCompleter) translateModel(model anthropic.Model) anthropic.Model {
	if !c.bedrock {
		return model
	}
	if strings.HasPrefix(string(model), "us.anthropic") {
		return model
	}
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:   "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaudeSonnet4_5_20250929: "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
		anthropic.ModelClaudeHaiku4_5_20251001:  "us.anthropic.claude-haiku-4-5-20251001-v1:0",
		anthropic.ModelClaudeOpus4_5_20251101:   "us.anthropic.claude-opus-4-5-20251101-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:   "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}
	if translated, ok := bedrockModels[model]; ok {
		return anthropic.Model(translated)
	}
	return model
}
