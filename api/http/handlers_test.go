package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vedantghorpade1/Sarvam/internal/agent"
	"github.com/vedantghorpade1/Sarvam/internal/call"
	"github.com/vedantghorpade1/Sarvam/internal/fault"
	"github.com/vedantghorpade1/Sarvam/internal/tts"
	"github.com/vedantghorpade1/Sarvam/internal/turn"
)

const testJWTSecret = "test-secret"

type fakeStore struct {
	agents      []agent.Agent
	created     []*agent.Agent
	recorded    map[string]time.Duration
	createErr   error
	deleteErr   error
	recordCalls int
}

func (f *fakeStore) Create(ctx context.Context, a *agent.Agent) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = "agent-new"
	f.created = append(f.created, a)
	return nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]agent.Agent, error) {
	return f.agents, nil
}

func (f *fakeStore) Delete(ctx context.Context, userID, agentID string) error {
	return f.deleteErr
}

func (f *fakeStore) RecordCall(ctx context.Context, agentID string, d time.Duration) error {
	if f.recorded == nil {
		f.recorded = map[string]time.Duration{}
	}
	f.recordCalls++
	f.recorded[agentID] = d
	return nil
}

type fakeSynth struct {
	audio []byte
	err   error
	last  tts.Request
}

func (f *fakeSynth) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

type fakeInitiator struct {
	handle *call.Handle
	err    error
}

func (f *fakeInitiator) InitiateCall(ctx context.Context, userID, agentID, phoneNumber, contactName string) (*call.Handle, error) {
	return f.handle, f.err
}

type stubLLM struct{}

func (stubLLM) Reply(ctx context.Context, persona, utterance string) (string, error) {
	return "ok", nil
}

func newTestServer(store *fakeStore, synth *fakeSynth, init *fakeInitiator) *echo.Echo {
	e := echo.New()
	h := NewHandlers(store, synth, turn.NewHandler(stubLLM{}, "https://example.com"), init, testJWTSecret)
	h.Register(e)
	return e
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": userID})
	s, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + s
}

func TestSynthesize_ServesAudio(t *testing.T) {
	synth := &fakeSynth{audio: []byte("mp3")}
	e := newTestServer(&fakeStore{}, synth, &fakeInitiator{})

	req := httptest.NewRequest(http.MethodGet, "/tts?text=hello&voice=anushka", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "audio/mpeg" {
		t.Fatalf("expected audio/mpeg, got %q", ct)
	}
	if rec.Body.String() != "mp3" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if synth.last.Text != "hello" || synth.last.VoiceID != "anushka" {
		t.Fatalf("unexpected synthesis request %+v", synth.last)
	}
}

func TestSynthesize_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid_argument", fault.New(fault.KindInvalidArgument, "text to speak is required"), http.StatusBadRequest},
		{"provider", fault.New(fault.KindProvider, "sarvam tts: status=403"), http.StatusBadGateway},
		{"timeout", fault.New(fault.KindTimeout, "sarvam tts deadline"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&fakeStore{}, &fakeSynth{err: tc.err}, &fakeInitiator{})
			req := httptest.NewRequest(http.MethodGet, "/tts?text=hi&voice=x", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected error payload, got %q", rec.Body.String())
			}
		})
	}
}

func TestCallStatus_RecordsCompletedCalls(t *testing.T) {
	store := &fakeStore{}
	e := newTestServer(store, &fakeSynth{}, &fakeInitiator{})

	form := url.Values{"CallStatus": {"completed"}, "CallDuration": {"95"}}
	req := httptest.NewRequest(http.MethodPost, "/twilio/call-status?agentId=agent-1", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.recorded["agent-1"] != 95*time.Second {
		t.Fatalf("expected 95s recorded, got %v", store.recorded["agent-1"])
	}
}

func TestCallStatus_IgnoresNonCompleted(t *testing.T) {
	store := &fakeStore{}
	e := newTestServer(store, &fakeSynth{}, &fakeInitiator{})

	form := url.Values{"CallStatus": {"ringing"}, "CallDuration": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/twilio/call-status?agentId=agent-1", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if store.recordCalls != 0 {
		t.Fatalf("non-completed status must not touch usage")
	}
}

func TestVoices_PublicCatalog(t *testing.T) {
	e := newTestServer(&fakeStore{}, &fakeSynth{}, &fakeInitiator{})
	req := httptest.NewRequest(http.MethodGet, "/api/voices", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("voice catalog must not require auth, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"anushka"`) {
		t.Fatalf("expected catalog entries, got %s", rec.Body.String())
	}
}

func TestAgents_RequireAuth(t *testing.T) {
	e := newTestServer(&fakeStore{}, &fakeSynth{}, &fakeInitiator{})
	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCreateAgent(t *testing.T) {
	store := &fakeStore{}
	e := newTestServer(store, &fakeSynth{}, &fakeInitiator{})

	body := `{"name":"Support","voiceId":"karun","firstMessage":"Hello [Name]!","systemPrompt":"Be nice."}`
	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-7"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one created agent")
	}
	if store.created[0].UserID != "user-7" {
		t.Fatalf("agent must belong to the token's user, got %q", store.created[0].UserID)
	}
	if !strings.Contains(rec.Body.String(), `"agent_id":"agent-new"`) {
		t.Fatalf("expected created id in response, got %s", rec.Body.String())
	}
}

func TestCreateAgent_UnknownVoiceRejected(t *testing.T) {
	store := &fakeStore{}
	e := newTestServer(store, &fakeSynth{}, &fakeInitiator{})

	body := `{"name":"Support","voiceId":"rachel","firstMessage":"Hi","systemPrompt":"Be nice."}`
	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-7"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown voice, got %d", rec.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("agent must not be created with an unknown voice")
	}
}

func TestCreateAgent_ValidationError(t *testing.T) {
	store := &fakeStore{createErr: fault.New(fault.KindInvalidArgument, "name, firstMessage and systemPrompt are required")}
	e := newTestServer(store, &fakeSynth{}, &fakeInitiator{})

	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-7"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInitiateCall_Endpoint(t *testing.T) {
	init := &fakeInitiator{handle: &call.Handle{SID: "CA42", Status: "queued"}}
	e := newTestServer(&fakeStore{}, &fakeSynth{}, init)

	body := `{"agentId":"agent-1","phoneNumber":"+15551234567","contactName":"Priya"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-7"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"callSid":"CA42"`) {
		t.Fatalf("expected call handle, got %s", rec.Body.String())
	}
}

func TestInitiateCall_InvalidNumber(t *testing.T) {
	init := &fakeInitiator{err: fault.New(fault.KindInvalidArgument, "invalid phone number")}
	e := newTestServer(&fakeStore{}, &fakeSynth{}, init)

	body := `{"agentId":"agent-1","phoneNumber":"bogus","contactName":"Priya"}`
	req := httptest.NewRequest(http.MethodPost, "/api/calls", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "user-7"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
