package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vedantghorpade1/Sarvam/internal/fault"
)

const elevenLabsHost = "api.elevenlabs.io"

// ElevenLabsClient synthesizes speech with ElevenLabs. Unlike Sarvam, the
// vendor returns the MP3 bytes directly in the response body.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	APIKey     string
	ModelID    string
	BaseURL    string
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		APIKey:     apiKey,
		ModelID:    "eleven_flash_v2_5",
		BaseURL:    "https://" + elevenLabsHost,
	}
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if c.APIKey == "" {
		return nil, fault.New(fault.KindProvider, "elevenlabs api key missing")
	}

	u, err := url.Parse(c.BaseURL + "/v1/text-to-speech/" + url.PathEscape(req.VoiceID))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("output_format", "mp3_44100_128")
	u.RawQuery = q.Encode()

	body := map[string]any{
		"model_id": c.ModelID,
		"text":     req.Text,
		"voice_settings": map[string]any{
			"stability":        0.4,
			"similarity_boost": 0.7,
		},
	}
	buf, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("xi-api-key", c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fault.Wrap(fault.KindTimeout, err, "elevenlabs tts")
		}
		return nil, fault.Wrap(fault.KindProvider, err, "elevenlabs tts")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fault.New(fault.KindProvider, "elevenlabs tts: status=%d body=%s", resp.StatusCode, string(b))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "elevenlabs tts: read audio")
	}
	if len(audio) == 0 {
		return nil, fault.New(fault.KindProvider, "elevenlabs tts: empty audio body")
	}
	return audio, nil
}
