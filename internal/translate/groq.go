package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Translator converts English program copy to Spanish for the bilingual
// catalog columns.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

var ErrNotConfigured = errors.New("translation is not configured")

type GroqClient struct {
	BaseURL string
	APIKey  string
	Model   string
}

func NewGroqClient(baseURL, apiKey, model string) *GroqClient {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return &GroqClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a professional English to Spanish translator for a county " +
	"assistance program website. Translate each numbered item into Spanish suitable " +
	"for residents of Northern Virginia. Keep program names, agency names, phone " +
	"numbers and URLs untranslated. Reply with the same numbered list and nothing else."

// TranslateBatch sends all texts as one numbered prompt and splits the
// reply back into the same order. Empty inputs pass through as empty
// outputs without a round trip.
func (c *GroqClient) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	var prompt strings.Builder
	nonEmpty := 0
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, t)
		nonEmpty++
	}
	if nonEmpty == 0 {
		out := make([]string, len(texts))
		return out, nil
	}

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq returned status: %d", resp.StatusCode)
	}

	var parsedResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsedResp.Choices) == 0 {
		return nil, errors.New("groq returned no choices")
	}

	return parseNumberedReply(parsedResp.Choices[0].Message.Content, len(texts))
}

var numberedLine = regexp.MustCompile(`^\s*(\d+)\.\s*(.*)$`)

// parseNumberedReply maps "N. text" lines back onto the input slots.
// Continuation lines without a number attach to the previous item.
func parseNumberedReply(reply string, n int) ([]string, error) {
	out := make([]string, n)
	current := -1
	for _, line := range strings.Split(reply, "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			idx := 0
			fmt.Sscanf(m[1], "%d", &idx)
			if idx < 1 || idx > n {
				continue
			}
			current = idx - 1
			out[current] = strings.TrimSpace(m[2])
			continue
		}
		if current >= 0 && strings.TrimSpace(line) != "" {
			out[current] += "\n" + strings.TrimSpace(line)
		}
	}
	if current == -1 {
		return nil, errors.New("could not parse translation reply")
	}
	return out, nil
}
