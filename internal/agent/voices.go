package agent

// Voice describes one entry in the synthesis vendor's speaker catalog.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags string `json:"tags"`
	Demo string `json:"demo"`
}

// sarvamVoices is the bulbul:v2 speaker catalog.
var sarvamVoices = []Voice{
	{ID: "anushka", Name: "Anushka", Tags: "Female, Clear, Professional (Default)"},
	{ID: "manisha", Name: "Manisha", Tags: "Female, Warm, Friendly"},
	{ID: "vidya", Name: "Vidya", Tags: "Female, Articulate, Precise"},
	{ID: "arya", Name: "Arya", Tags: "Female, Young, Energetic"},
	{ID: "abhilash", Name: "Abhilash", Tags: "Male, Deep, Authoritative"},
	{ID: "karun", Name: "Karun", Tags: "Male, Natural, Conversational"},
	{ID: "hitesh", Name: "Hitesh", Tags: "Male, Professional, Engaging"},
}

// Voices returns a copy of the speaker catalog.
func Voices() []Voice {
	out := make([]Voice, len(sarvamVoices))
	copy(out, sarvamVoices)
	return out
}

// KnownVoice reports whether id names a catalog speaker.
func KnownVoice(id string) bool {
	for _, v := range sarvamVoices {
		if v.ID == id {
			return true
		}
	}
	return false
}
