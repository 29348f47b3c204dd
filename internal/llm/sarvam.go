package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vedantghorpade1/Sarvam/internal/fault"
)

// DefaultBaseURL is Sarvam's OpenAI-compatible chat completions endpoint.
const DefaultBaseURL = "https://api.sarvam.ai/v1"

// FallbackReply is returned when the model produced no usable content. An
// empty agent turn is a worse caller experience than a generic one.
const FallbackReply = "I'm not sure how to respond to that."

// SarvamClient generates single-turn replies via Sarvam's chat completions API.
type SarvamClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	BaseURL    string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

func NewSarvamClient(apiKey, model string) *SarvamClient {
	return &SarvamClient{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    DefaultBaseURL,
	}
}

// Reply sends the persona as the system instruction and the caller's utterance
// as the sole user turn. No prior turns are carried; conversation state lives
// in the call-control loop, not here.
func (c *SarvamClient) Reply(ctx context.Context, persona, utterance string) (string, error) {
	if c.APIKey == "" {
		return "", fault.New(fault.KindProvider, "sarvam api key missing")
	}
	endpoint := c.BaseURL + "/chat/completions"

	messages := []chatMessage{
		{Role: "system", Content: persona},
		{Role: "user", Content: utterance},
	}

	reqBody, _ := json.Marshal(chatCompletionsRequest{Model: c.Model, Messages: messages})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fault.Wrap(fault.KindTimeout, err, "sarvam chat completions")
		}
		return "", fault.Wrap(fault.KindProvider, err, "sarvam chat completions")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fault.New(fault.KindProvider, "sarvam chat completions: status=%d body=%s", resp.StatusCode, string(b))
	}
	var cr chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fault.Wrap(fault.KindProvider, err, "sarvam chat completions: decode")
	}

	// An empty completion is not an error; the caller still needs something
	// to hear.
	if len(cr.Choices) == 0 {
		return FallbackReply, nil
	}
	answer := strings.TrimSpace(cr.Choices[0].Message.Content)
	if answer == "" {
		return FallbackReply, nil
	}
	return answer, nil
}
