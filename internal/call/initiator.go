// Package call places outbound calls: it loads the agent configuration,
// builds the opening directive, and hands the conversation to the turn engine.
package call

import (
	"context"
	"errors"
	"log"
	"regexp"

	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"

	"github.com/vedantghorpade1/Sarvam/internal/agent"
	"github.com/vedantghorpade1/Sarvam/internal/fault"
	"github.com/vedantghorpade1/Sarvam/internal/turn"
)

// twilioInvalidToNumber is Twilio's error code for an undialable 'To' number.
const twilioInvalidToNumber = 21211

const (
	defaultFirstMessage = "Hello, how can I help you today?"
	defaultCompanyName  = "our company"
	noInputClosing      = "We did not receive any input. Goodbye."
)

var (
	e164Pattern    = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	namePattern    = regexp.MustCompile(`(?i)\[name\]`)
	companyPattern = regexp.MustCompile(`(?i)\[company\]`)
)

// AgentFinder loads an agent configuration owned by a user.
type AgentFinder interface {
	Get(ctx context.Context, userID, agentID string) (*agent.Agent, error)
}

// CallCreator is the slice of Twilio's API the initiator needs.
// *twilioApi.ApiService satisfies it.
type CallCreator interface {
	CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error)
}

// Handle identifies a created call at the telephony provider.
type Handle struct {
	SID    string `json:"callSid"`
	Status string `json:"status"`
}

// Initiator places outbound calls through Twilio.
type Initiator struct {
	Agents        AgentFinder
	Calls         CallCreator
	FromNumber    string
	PublicBaseURL string
}

func NewInitiator(agents AgentFinder, calls CallCreator, fromNumber, publicBaseURL string) *Initiator {
	return &Initiator{Agents: agents, Calls: calls, FromNumber: fromNumber, PublicBaseURL: publicBaseURL}
}

// Personalize substitutes the [Name] and [Company] placeholder tokens. Every
// occurrence is replaced, case-insensitively; text without placeholders passes
// through unchanged, so applying it twice is harmless.
func Personalize(message, contactName, company string) string {
	out := namePattern.ReplaceAllString(message, contactName)
	return companyPattern.ReplaceAllString(out, company)
}

// InitiateCall validates the destination, loads the agent, and asks Twilio to
// place the call with the opening directive. No call is placed when any
// validation fails.
func (i *Initiator) InitiateCall(ctx context.Context, userID, agentID, phoneNumber, contactName string) (*Handle, error) {
	if !e164Pattern.MatchString(phoneNumber) {
		return nil, fault.New(fault.KindInvalidArgument,
			"invalid phone number %q: must be in E.164 format (e.g., +15551234567)", phoneNumber)
	}

	a, err := i.Agents.Get(ctx, userID, agentID)
	if err != nil {
		return nil, err
	}

	message := a.FirstMessage
	if message == "" {
		message = defaultFirstMessage
	}
	message = Personalize(message, contactName, defaultCompanyName)

	xml, err := i.openingTwiML(a, message)
	if err != nil {
		return nil, fault.Wrap(fault.KindProvider, err, "build opening directive")
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(i.FromNumber)
	params.SetTwiml(xml)
	params.SetStatusCallback(i.PublicBaseURL + "/twilio/call-status?agentId=" + a.ID)
	params.SetStatusCallbackMethod("POST")
	params.SetStatusCallbackEvent([]string{"completed"})
	if a.MaxDurationSeconds > 0 {
		params.SetTimeLimit(a.MaxDurationSeconds)
	}

	created, err := i.Calls.CreateCall(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Code == twilioInvalidToNumber {
			return nil, fault.Wrap(fault.KindInvalidArgument, err, "invalid phone number %q", phoneNumber)
		}
		return nil, fault.Wrap(fault.KindProvider, err, "create call")
	}

	handle := &Handle{}
	if created.Sid != nil {
		handle.SID = *created.Sid
	}
	if created.Status != nil {
		handle.Status = *created.Status
	}
	log.Printf("call initiated via Twilio, SID: %s status: %s", handle.SID, handle.Status)
	return handle, nil
}

// openingTwiML wraps the personalized first message in a speech gather so the
// turn loop starts listening as soon as the opening audio finishes.
func (i *Initiator) openingTwiML(a *agent.Agent, message string) (string, error) {
	play := &twiml.VoicePlay{Url: turn.TTSURL(i.PublicBaseURL, message, a.VoiceID)}
	gather := &twiml.VoiceGather{
		Input:         "speech",
		SpeechTimeout: "auto",
		Action:        turn.GatherURL(i.PublicBaseURL, a.VoiceID),
		Method:        "POST",
		InnerElements: []twiml.Element{play},
	}
	say := &twiml.VoiceSay{Message: noInputClosing}
	return twiml.Voice([]twiml.Element{gather, say})
}
