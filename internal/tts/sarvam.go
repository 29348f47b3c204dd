package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/vedantghorpade1/Sarvam/internal/fault"
)

const sarvamEndpoint = "https://api.sarvam.ai/text-to-speech"

// DefaultLanguageCode is used when the request carries no language hint.
const DefaultLanguageCode = "en-IN"

// SarvamClient synthesizes speech with Sarvam's bulbul models. Sarvam wraps
// the audio in a JSON envelope as base64; the client normalizes it to raw
// bytes before returning.
type SarvamClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	Endpoint   string
}

type sarvamRequest struct {
	Model              string `json:"model"`
	Text               string `json:"text"`
	Speaker            string `json:"speaker"`
	TargetLanguageCode string `json:"target_language_code"`
}

type sarvamResponse struct {
	RequestID string   `json:"request_id"`
	Audios    []string `json:"audios"`
}

func NewSarvamClient(apiKey, model string) *SarvamClient {
	return &SarvamClient{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		APIKey:     apiKey,
		Model:      model,
		Endpoint:   sarvamEndpoint,
	}
}

func (c *SarvamClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if c.APIKey == "" {
		return nil, fault.New(fault.KindProvider, "sarvam api key missing")
	}

	lang := req.LanguageCode
	if lang == "" {
		lang = DefaultLanguageCode
	}
	body, _ := json.Marshal(sarvamRequest{
		Model:              c.Model,
		Text:               req.Text,
		Speaker:            req.VoiceID,
		TargetLanguageCode: lang,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("api-subscription-key", c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fault.Wrap(fault.KindTimeout, err, "sarvam tts")
		}
		return nil, fault.Wrap(fault.KindProvider, err, "sarvam tts")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fault.New(fault.KindProvider, "sarvam tts: status=%d body=%s", resp.StatusCode, string(b))
	}

	var sr sarvamResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "sarvam tts: decode envelope")
	}
	if len(sr.Audios) == 0 {
		return nil, fault.New(fault.KindProvider, "sarvam tts: no audio data returned")
	}
	audio, err := base64.StdEncoding.DecodeString(sr.Audios[0])
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "sarvam tts: decode audio")
	}
	return audio, nil
}
