// Package agent holds the voice agent configuration record and its MongoDB
// store. The turn loop never touches this package; configuration is read once
// at call initiation and stays immutable for the lifetime of a call.
package agent

import "time"

// Agent is a configured voice agent. VoiceID names a speaker in the active
// synthesis vendor's catalog (see Voices).
type Agent struct {
	ID          string `bson:"_id" json:"agentId"`
	UserID      string `bson:"user_id" json:"userId"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	VoiceID      string `bson:"voice_id" json:"voiceId"`
	FirstMessage string `bson:"first_message" json:"firstMessage"`
	SystemPrompt string `bson:"system_prompt" json:"systemPrompt"`
	Language     string `bson:"language" json:"language"`

	MaxDurationSeconds int `bson:"max_duration_seconds" json:"maxDurationSeconds"`

	UsageMinutes float64    `bson:"usage_minutes" json:"usageMinutes"`
	LastCalledAt *time.Time `bson:"last_called_at,omitempty" json:"lastCalledAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

const (
	DefaultLanguage           = "en"
	DefaultMaxDurationSeconds = 1800
	DefaultVoiceID            = "anushka"
)
