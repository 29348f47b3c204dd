package turn

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Webhook and audio paths referenced inside directives.
const (
	GatherPath = "/twilio/gather"
	ThinkPath  = "/twilio/think"
	TTSPath    = "/tts"
)

// BaseURL resolves the public base URL Twilio can reach us on.
// Priority: configured BASE_URL > X-Forwarded-* headers > request Host heuristic.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	host := r.Header.Get("X-Forwarded-Host")
	if proto != "" && host != "" {
		return fmt.Sprintf("%s://%s", proto, host)
	}
	host = r.Host
	proto = "https"
	if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
		proto = "http"
	}
	return fmt.Sprintf("%s://%s", proto, host)
}

// ThinkURL builds the redirect target carrying the recognized speech and voice.
func ThinkURL(base string, p Params) string {
	return base + ThinkPath + "?" + p.Values().Encode()
}

// GatherURL builds the listen action URL, forwarding only the voice id.
func GatherURL(base, voiceID string) string {
	return base + GatherPath + "?" + Params{VoiceID: voiceID}.Values().Encode()
}

// TTSURL builds the synthesis URL a <Play> verb fetches audio from.
func TTSURL(base, text, voiceID string) string {
	v := url.Values{}
	v.Set("text", text)
	v.Set("voice", voiceID)
	return base + TTSPath + "?" + v.Encode()
}
