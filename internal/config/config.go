package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	// PublicBaseURL is the address Twilio can reach us back on. Redirect and
	// Play URLs embedded in TwiML are built from it; when empty, handlers fall
	// back to forwarded headers from the inbound request.
	PublicBaseURL string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	SarvamAPIKey   string
	SarvamLLMModel string
	SarvamTTSModel string

	ElevenLabsKey string

	// TTSProvider selects the synthesis vendor: "sarvam" or "elevenlabs".
	TTSProvider string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it: %v", err)
	}

	addr := getEnv("HTTP_ADDRESS", ":8080")

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		log.Println("Warning: BASE_URL not set - absolute callback URLs will be derived from request headers")
	}

	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioNumber := os.Getenv("TWILIO_PHONE_NUMBER")
	if twilioSID == "" || twilioToken == "" {
		log.Println("Warning: TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN not set - outbound calls and webhook auth will not work")
	}
	if twilioNumber == "" {
		log.Println("Warning: TWILIO_PHONE_NUMBER not set - outbound calls will not work")
	}

	sarvamKey := os.Getenv("SARVAM_API_KEY")
	if sarvamKey == "" {
		log.Println("Warning: SARVAM_API_KEY not set - LLM and Sarvam TTS will not work")
	}

	elevenKey := os.Getenv("ELEVENLABS_API_KEY")

	provider := getEnv("TTS_PROVIDER", "sarvam")
	if provider == "elevenlabs" && elevenKey == "" {
		log.Println("Warning: TTS_PROVIDER=elevenlabs but ELEVENLABS_API_KEY not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Println("Warning: JWT_SECRET not set - dashboard API auth will reject all requests")
	}

	cfg := Config{
		HTTPAddress:       addr,
		PublicBaseURL:     baseURL,
		TwilioAccountSID:  twilioSID,
		TwilioAuthToken:   twilioToken,
		TwilioPhoneNumber: twilioNumber,
		SarvamAPIKey:      sarvamKey,
		SarvamLLMModel:    getEnv("SARVAM_LLM_MODEL", "sarvam-m"),
		SarvamTTSModel:    getEnv("SARVAM_TTS_MODEL", "bulbul:v2"),
		ElevenLabsKey:     elevenKey,
		TTSProvider:       provider,
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "voiceagents"),
		JWTSecret:         jwtSecret,
	}

	log.Printf("config: HTTP_ADDRESS=%s TTS_PROVIDER=%s", cfg.HTTPAddress, cfg.TTSProvider)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
