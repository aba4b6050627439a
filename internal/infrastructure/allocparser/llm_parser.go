package allocparser

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	openai "github.com/sashabaranov/go-openai"

	"rebalancer/internal/app/port"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const llmSystemPrompt = `You convert portfolio descriptions into target allocations.
Respond with a single JSON object mapping upper-case asset symbols to percentage numbers, nothing else.
Example: {"BTC": 40, "ETH": 35, "USDT": 25}.
If the description lists assets without percentages, split evenly.`

const defaultModel = openai.GPT4oMini

// LLMParser turns a free-text portfolio description into a target allocation
// via a chat completion. It implements port.AllocationParser and falls back
// to the deterministic TextParser when the model call or its output fails.
type LLMParser struct {
	client   *openai.Client
	fallback port.AllocationParser
	logger   port.Logger
	model    string
}

// NewLLMParser creates an LLMParser. An empty model selects the default.
func NewLLMParser(apiKey, model string, fallback port.AllocationParser, log port.Logger) *LLMParser {
	if model == "" {
		model = defaultModel
	}
	return &LLMParser{
		client:   openai.NewClient(apiKey),
		fallback: fallback,
		logger:   log,
		model:    model,
	}
}

// ParseAllocation implements port.AllocationParser.
func (p *LLMParser) ParseAllocation(ctx context.Context, description string) (map[string]float64, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("empty allocation description")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
	})
	if err != nil {
		p.logger.Warn("chat completion failed, falling back to lexical parser", "error", err)
		return p.fallback.ParseAllocation(ctx, description)
	}
	if len(resp.Choices) == 0 {
		p.logger.Warn("chat completion returned no choices, falling back to lexical parser")
		return p.fallback.ParseAllocation(ctx, description)
	}

	allocation, err := decodeAllocationJSON(resp.Choices[0].Message.Content)
	if err != nil {
		p.logger.Warn("model output not decodable, falling back to lexical parser", "error", err)
		return p.fallback.ParseAllocation(ctx, description)
	}
	return allocation, nil
}

// decodeAllocationJSON extracts the first JSON object from the model output
// and decodes it. Models occasionally wrap the object in code fences or prose.
func decodeAllocationJSON(content string) (map[string]float64, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var raw map[string]float64
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode allocation object: %w", err)
	}

	out := make(map[string]float64, len(raw))
	for symbol, percent := range raw {
		if percent <= 0 {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(symbol))] += percent
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("model output contained no positive allocations")
	}
	return out, nil
}
