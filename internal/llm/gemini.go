// Package llm wraps the Gemini text-generation service behind the four
// call shapes the query layer needs: SQL generation, Cypher generation,
// answer synthesis, and schema-only fallback answers.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelConfig defines configuration for a Gemini model.
type ModelConfig struct {
	Name        string
	Temperature float32
	TopP        float32
	TopK        int32
}

// AvailableModels defines the available Gemini models and their configurations.
var AvailableModels = map[string]ModelConfig{
	"flash": {
		Name:        "gemini-flash-latest",
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        40,
	},
	"pro": {
		Name:        "gemini-pro-latest",
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        40,
	},
	"flash-2": {
		Name:        "gemini-2.0-flash",
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        40,
	},
	"experimental": {
		Name:        "gemini-2.0-flash-exp",
		Temperature: 0.1,
		TopP:        0.95,
		TopK:        40,
	},
}

const (
	maxQueryTokens    = 500
	maxAnswerTokens   = 300
	fallbackTemp      = 0.3
	answerContextRows = 10
)

// Client talks to Gemini.
type Client struct {
	genai  *genai.Client
	config ModelConfig
}

// NewClient creates a Gemini-backed client. Unknown model keys fall back
// to "flash".
func NewClient(ctx context.Context, apiKey, modelKey string) (*Client, error) {
	if modelKey == "" {
		modelKey = "flash"
	}
	config, ok := AvailableModels[modelKey]
	if !ok {
		config = AvailableModels["flash"]
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{genai: client, config: config}, nil
}

func (c *Client) Close() error {
	return c.genai.Close()
}

func (c *Client) model(maxTokens int32, temperature float32) *genai.GenerativeModel {
	model := c.genai.GenerativeModel(c.config.Name)
	model.SetTemperature(temperature)
	model.SetTopP(c.config.TopP)
	model.SetTopK(c.config.TopK)
	model.SetMaxOutputTokens(maxTokens)
	return model
}

// GenerateSQL converts a question into a SQL query for the given schema.
func (c *Client) GenerateSQL(ctx context.Context, question, schema string) (string, error) {
	prompt := fmt.Sprintf(`Generate a SQL query.

SCHEMA:
%s

Question: %s

Return ONLY the SQL query:`, schema, question)

	text, err := c.generate(ctx, c.model(maxQueryTokens, c.config.Temperature), prompt)
	if err != nil {
		return "", err
	}
	return cleanGeneratedQuery(text), nil
}

// GenerateCypher converts a question into a Cypher query for the given
// graph schema.
func (c *Client) GenerateCypher(ctx context.Context, question, schema string) (string, error) {
	prompt := fmt.Sprintf(`You are a Neo4j Cypher expert.

Graph schema:
%s

Question: %s

Return ONLY the Cypher query, no explanation. Always use LIMIT.`, schema, question)

	text, err := c.generate(ctx, c.model(maxQueryTokens, c.config.Temperature), prompt)
	if err != nil {
		return "", err
	}
	return cleanGeneratedQuery(text), nil
}

// SynthesizeAnswer turns query result rows into a direct natural-language
// answer. Only the first few rows are sent as context.
func (c *Client) SynthesizeAnswer(ctx context.Context, question string, rows []map[string]any, method string) (string, error) {
	dataStr := "No data returned"
	if len(rows) > 0 {
		if len(rows) > answerContextRows {
			rows = rows[:answerContextRows]
		}
		encoded, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode result rows: %w", err)
		}
		dataStr = string(encoded)
	}

	prompt := fmt.Sprintf(`Question: %s

%s results:
%s

Answer the question directly based on the results:`, question, method, dataStr)

	return c.generate(ctx, c.model(maxAnswerTokens, c.config.Temperature), prompt)
}

// FallbackAnswer generates a best-effort answer from schema knowledge alone,
// used when query execution failed.
func (c *Client) FallbackAnswer(ctx context.Context, question, schema, method string) (string, error) {
	prompt := fmt.Sprintf(`Question: %s

%s

Using %s knowledge only (no query execution), provide the most likely answer.
If you cannot find exact data, give a reasonable summary or say what you'd expect to find.

Answer directly:`, question, schema, method)

	return c.generate(ctx, c.model(maxAnswerTokens, fallbackTemp), prompt)
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

// cleanGeneratedQuery strips markdown code fences from generated queries.
func cleanGeneratedQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "```sql")
	query = strings.TrimPrefix(query, "```cypher")
	query = strings.TrimPrefix(query, "```")
	query = strings.TrimSuffix(query, "```")
	return strings.TrimSpace(query)
}
