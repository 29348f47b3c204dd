package turn

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/twilio/twilio-go/twiml"
)

// PersonaPrompt is the fixed system instruction for the reply generator.
const PersonaPrompt = "You are a helpful and friendly voice assistant. Keep your responses concise."

const (
	// ackVoice is a platform-native voice so the acknowledgment plays without
	// a synthesis round-trip; the Gather handler must stay fast.
	ackVoice = "Polly.Joanna-Neural"
	ackText  = "One moment."

	closingText      = "We didn't hear you. Goodbye."
	heardNothingText = "I did not hear anything. Could you please repeat that?"
	fallbackReply    = "I'm not sure how to respond to that."
)

// llmBudget bounds the reply generation; Twilio abandons webhooks that take
// around fifteen seconds, and the synthesized reply still has to be fetched.
const llmBudget = 12 * time.Second

// apologyTwiML is the terminal response when directive building itself fails.
// A bare HTTP error would leave the live call hanging with no instruction.
const apologyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>An error occurred. Goodbye.</Say><Hangup/></Response>`

// ReplyGenerator produces the agent's next utterance for a single caller turn.
type ReplyGenerator interface {
	Reply(ctx context.Context, persona, utterance string) (string, error)
}

// Handler holds the two turn-engine webhook handlers.
type Handler struct {
	LLM ReplyGenerator

	// PublicBaseURL overrides request-derived URL building when set.
	PublicBaseURL string
}

func NewHandler(llm ReplyGenerator, publicBaseURL string) *Handler {
	return &Handler{LLM: llm, PublicBaseURL: publicBaseURL}
}

// Gather receives the caller's recognized speech. It never performs vendor
// calls: with speech present it acknowledges and redirects the slow work to
// Think; with silence it closes the call.
func (h *Handler) Gather(c echo.Context) error {
	p := DecodeParams(c)
	base := BaseURL(h.PublicBaseURL, c.Request())

	if p.SpeechResult == "" {
		say := &twiml.VoiceSay{Message: closingText}
		hangup := &twiml.VoiceHangup{}
		xml, err := twiml.Voice([]twiml.Element{say, hangup})
		return respondTwiML(c, xml, err)
	}

	say := &twiml.VoiceSay{Message: ackText, Voice: ackVoice}
	redirect := &twiml.VoiceRedirect{Url: ThinkURL(base, p), Method: "POST"}
	xml, err := twiml.Voice([]twiml.Element{say, redirect})
	return respondTwiML(c, xml, err)
}

// Think performs the latency-heavy work and re-arms the listen loop. It is
// reached only via the redirect emitted by Gather, so its parameters ride the
// query string. Vendor failures are masked by the fallback utterance; only
// caller silence legitimately ends the call.
func (h *Handler) Think(c echo.Context) error {
	p := DecodeParams(c)
	if p.VoiceID == "" {
		p.VoiceID = "anushka"
	}
	base := BaseURL(h.PublicBaseURL, c.Request())

	var replyText string
	if p.SpeechResult != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), llmBudget)
		defer cancel()
		reply, err := h.LLM.Reply(ctx, PersonaPrompt, p.SpeechResult)
		if err != nil {
			log.Printf("think: reply generation failed, using fallback: %v", err)
			replyText = fallbackReply
		} else {
			replyText = reply
		}
	} else {
		replyText = heardNothingText
	}

	play := &twiml.VoicePlay{Url: TTSURL(base, replyText, p.VoiceID)}
	gather := &twiml.VoiceGather{
		Input:         "speech",
		SpeechTimeout: "auto",
		Action:        GatherURL(base, p.VoiceID),
		Method:        "POST",
		InnerElements: []twiml.Element{play},
	}
	xml, err := twiml.Voice([]twiml.Element{gather})
	return respondTwiML(c, xml, err)
}

// respondTwiML writes the directive, substituting the apology document when
// building failed. Webhook responses are always 200 with call-control markup.
func respondTwiML(c echo.Context, xml string, err error) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml")
	if err != nil {
		log.Printf("twiml build failed: %v", err)
		return c.String(http.StatusOK, apologyTwiML)
	}
	return c.String(http.StatusOK, xml)
}
