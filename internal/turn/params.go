// Package turn implements the stateless conversation loop: the Gather handler
// acknowledges recognized speech and redirects to Think; Think calls the
// language model and re-arms the listen loop. Conversation state rides the
// URL parameters of each directive; nothing is stored server-side.
package turn

import (
	"net/url"

	"github.com/labstack/echo/v4"
)

// Params is the typed form of the state carried between webhook hops. The
// voice id must thread unchanged through every redirect or the agent's
// configured voice is silently lost for the rest of the call.
type Params struct {
	SpeechResult string
	VoiceID      string
}

// Values encodes the params for embedding in a redirect or action URL.
// Empty fields are omitted.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.SpeechResult != "" {
		v.Set("SpeechResult", p.SpeechResult)
	}
	if p.VoiceID != "" {
		v.Set("voiceId", p.VoiceID)
	}
	return v
}

// DecodeParams reconstructs turn state from a webhook invocation. Twilio
// posts SpeechResult as a form field on direct webhooks; after a redirect
// both values ride the query string. A malformed request decodes to empty
// speech, which the handlers treat as caller silence rather than an error.
func DecodeParams(c echo.Context) Params {
	speech := c.FormValue("SpeechResult")
	if speech == "" {
		speech = c.QueryParam("SpeechResult")
	}
	voice := c.QueryParam("voiceId")
	if voice == "" {
		voice = c.FormValue("voiceId")
	}
	return Params{SpeechResult: speech, VoiceID: voice}
}
