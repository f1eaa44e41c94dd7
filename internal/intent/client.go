package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
)

// Client extracts structured travel intent from free text via a
// chat-completions style API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds intent client configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Default: https://openrouter.ai/api/v1
	Timeout time.Duration
}

// NewClient creates a new intent extraction client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	if cfg.Model == "" {
		cfg.Model = "google/gemini-2.0-flash-001"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

const systemPromptTemplate = `You are a travel request analyzer. Today's date is %s.
Extract structured intent from the user's message and reply with ONLY a JSON object in this exact shape (use null for anything the user did not state):
{
  "travel_dates": {"start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD", "season": null, "flexibility": null, "duration_days": null},
  "budget": {"min_per_day": null, "max_per_day": null, "total": null, "currency": null, "tier": null},
  "destination_preferences": {"destination_type": [], "climate": [], "named_locations": [], "exclusions": []},
  "travelers": {"group_size": null, "traveler_types": [], "age_bands": [], "special_needs": []},
  "activities": [],
  "required_amenities": [],
  "accommodation": {"min_star_rating": null, "room_types": [], "property_types": []},
  "urgency": null,
  "intent": null
}`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract sends the user message to the model and decodes the structured
// intent it returns. The caller decides how a failure degrades; this method
// just reports it.
func (c *Client) Extract(ctx context.Context, message string, now time.Time) (*query.RawAnalysis, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02"))},
			{Role: "user", Content: message},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read intent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode intent response: %w", err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("intent API error: %s", parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("intent API returned no choices")
	}

	return DecodeAnalysis(parsed.Choices[0].Message.Content)
}
