package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vedantghorpade1/Sarvam/internal/agent"
	"github.com/vedantghorpade1/Sarvam/internal/call"
	"github.com/vedantghorpade1/Sarvam/internal/fault"
	appmw "github.com/vedantghorpade1/Sarvam/internal/middleware"
	"github.com/vedantghorpade1/Sarvam/internal/tts"
	"github.com/vedantghorpade1/Sarvam/internal/turn"
)

// AgentStore is the persistence surface the API needs.
type AgentStore interface {
	Create(ctx context.Context, a *agent.Agent) error
	ListByUser(ctx context.Context, userID string) ([]agent.Agent, error)
	Delete(ctx context.Context, userID, agentID string) error
	RecordCall(ctx context.Context, agentID string, duration time.Duration) error
}

// CallInitiator places outbound calls.
type CallInitiator interface {
	InitiateCall(ctx context.Context, userID, agentID, phoneNumber, contactName string) (*call.Handle, error)
}

type Handlers struct {
	Agents    AgentStore
	Synth     tts.Synthesizer
	Turn      *turn.Handler
	Initiator CallInitiator
	JWTSecret string
}

func NewHandlers(agents AgentStore, synth tts.Synthesizer, turnHandler *turn.Handler, initiator CallInitiator, jwtSecret string) Handlers {
	return Handlers{Agents: agents, Synth: synth, Turn: turnHandler, Initiator: initiator, JWTSecret: jwtSecret}
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Twilio-facing surface. The TTS endpoint is fetched by Twilio's media
	// layer when it plays a directive's audio URL.
	e.GET(turn.TTSPath, h.synthesize)
	e.POST(turn.GatherPath, h.Turn.Gather)
	e.POST(turn.ThinkPath, h.Turn.Think)
	e.POST("/twilio/call-status", h.callStatus)

	// Dashboard surface.
	e.GET("/api/voices", h.listVoices)
	api := e.Group("/api", appmw.JWTAuth(h.JWTSecret))
	api.POST("/agents", h.createAgent)
	api.GET("/agents", h.listAgents)
	api.DELETE("/agents/:id", h.deleteAgent)
	api.POST("/calls", h.initiateCall)
}

// synthesize serves audio for directive <Play> URLs: text and voice arrive as
// query parameters, audio/mpeg bytes go back.
func (h Handlers) synthesize(c echo.Context) error {
	req := tts.Request{
		Text:         c.QueryParam("text"),
		VoiceID:      c.QueryParam("voice"),
		LanguageCode: c.QueryParam("language"),
	}
	audio, err := h.Synth.Synthesize(c.Request().Context(), req)
	if err != nil {
		log.Printf("tts: synthesis failed: %v", err)
		return errorJSON(c, err)
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

// callStatus is Twilio's completion callback; it feeds usage accounting,
// which deliberately lives outside the turn loop.
func (h Handlers) callStatus(c echo.Context) error {
	if c.FormValue("CallStatus") != "completed" {
		return c.String(http.StatusOK, "OK")
	}
	agentID := c.QueryParam("agentId")
	seconds, _ := strconv.Atoi(c.FormValue("CallDuration"))
	if agentID == "" || seconds <= 0 {
		return c.String(http.StatusOK, "OK")
	}
	if err := h.Agents.RecordCall(c.Request().Context(), agentID, time.Duration(seconds)*time.Second); err != nil {
		log.Printf("call-status: record usage for agent %s failed: %v", agentID, err)
	}
	return c.String(http.StatusOK, "OK")
}

func (h Handlers) listVoices(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"voices": agent.Voices()})
}

type createAgentRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	VoiceID            string `json:"voiceId"`
	FirstMessage       string `json:"firstMessage"`
	SystemPrompt       string `json:"systemPrompt"`
	Language           string `json:"language"`
	MaxDurationSeconds int    `json:"maxDurationSeconds"`
}

func (h Handlers) createAgent(c echo.Context) error {
	var req createAgentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request body"})
	}
	if req.VoiceID != "" && !agent.KnownVoice(req.VoiceID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "unknown voice id: " + req.VoiceID})
	}
	a := agent.Agent{
		UserID:             appmw.UserID(c),
		Name:               req.Name,
		Description:        req.Description,
		VoiceID:            req.VoiceID,
		FirstMessage:       req.FirstMessage,
		SystemPrompt:       req.SystemPrompt,
		Language:           req.Language,
		MaxDurationSeconds: req.MaxDurationSeconds,
	}
	if err := h.Agents.Create(c.Request().Context(), &a); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"agent_id": a.ID,
		"name":     a.Name,
		"message":  "AI agent created successfully.",
	})
}

func (h Handlers) listAgents(c echo.Context) error {
	agents, err := h.Agents.ListByUser(c.Request().Context(), appmw.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"agents": agents})
}

func (h Handlers) deleteAgent(c echo.Context) error {
	if err := h.Agents.Delete(c.Request().Context(), appmw.UserID(c), c.Param("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Agent deleted."})
}

type initiateCallRequest struct {
	AgentID     string `json:"agentId"`
	PhoneNumber string `json:"phoneNumber"`
	ContactName string `json:"contactName"`
}

func (h Handlers) initiateCall(c echo.Context) error {
	var req initiateCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request body"})
	}
	handle, err := h.Initiator.InitiateCall(c.Request().Context(), appmw.UserID(c), req.AgentID, req.PhoneNumber, req.ContactName)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"callSid": handle.SID,
		"status":  handle.Status,
		"message": "Call initiated successfully.",
	})
}

// errorJSON maps error kinds to HTTP statuses for the non-webhook surface.
// Webhook handlers never use this; they answer with call-control markup.
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.KindInvalidArgument:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindProvider, fault.KindTimeout:
		status = http.StatusBadGateway
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
