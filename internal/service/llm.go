package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Message represents a message in a chat completion
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the wire body for a chat-completions call
type completionRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
}

// completionResponse is the subset of the reply we consume
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompletionClient calls an OpenAI-compatible chat-completions endpoint.
type CompletionClient struct {
	apiKey       string
	apiURL       string
	model        string
	supportsJSON bool
	client       *http.Client
}

// NewOpenAIClient creates a client for the OpenAI chat-completions API
func NewOpenAIClient() (*CompletionClient, error) {
	apiKey, err := readAPIKey("OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	apiURL := os.Getenv("OPENAI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}

	return &CompletionClient{
		apiKey:       apiKey,
		apiURL:       apiURL,
		model:        model,
		supportsJSON: true,
		client:       &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// NewPerplexityClient creates a client for the Perplexity API. Perplexity
// does not accept response_format, so prompts must request JSON explicitly.
func NewPerplexityClient() (*CompletionClient, error) {
	apiKey, err := readAPIKey("PERPLEXITY_API_KEY")
	if err != nil {
		return nil, err
	}

	apiURL := os.Getenv("PERPLEXITY_API_URL")
	if apiURL == "" {
		apiURL = "https://api.perplexity.ai/chat/completions"
	}

	model := os.Getenv("PERPLEXITY_MODEL")
	if model == "" {
		model = "sonar"
	}

	return &CompletionClient{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// readAPIKey reads a key from the environment or from the file named by
// <VAR>_FILE.
func readAPIKey(envVar string) (string, error) {
	apiKey := os.Getenv(envVar)
	if apiKey != "" {
		return apiKey, nil
	}

	apiKeyFile := os.Getenv(envVar + "_FILE")
	if apiKeyFile == "" {
		return "", fmt.Errorf("%s or %s_FILE must be set", envVar, envVar)
	}

	apiKeyBytes, err := os.ReadFile(apiKeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}

	apiKey = strings.TrimSpace(string(apiKeyBytes))
	if apiKey == "" {
		return "", fmt.Errorf("API key file is empty")
	}
	return apiKey, nil
}

// Complete sends the messages and returns the first choice's content.
// jsonMode requests a json_object response where the provider supports it.
func (c *CompletionClient) Complete(ctx context.Context, messages []Message, temperature float64, jsonMode bool) (string, error) {
	reqBody := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	}
	if jsonMode && c.supportsJSON {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("completion API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("completion API request failed with status %d", resp.StatusCode)
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseJSONContent unmarshals model output into v. Models occasionally wrap
// JSON in prose or code fences; on a parse failure the outermost braces are
// extracted with a regex and parsing is retried before giving up.
func ParseJSONContent(content string, v interface{}) error {
	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}

	for _, re := range []*regexp.Regexp{jsonObjectRe, jsonArrayRe} {
		if match := re.FindString(content); match != "" {
			if err := json.Unmarshal([]byte(match), v); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("response is not valid JSON")
}
