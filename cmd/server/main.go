package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twilio/twilio-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apihttp "github.com/vedantghorpade1/Sarvam/api/http"
	"github.com/vedantghorpade1/Sarvam/internal/agent"
	"github.com/vedantghorpade1/Sarvam/internal/call"
	"github.com/vedantghorpade1/Sarvam/internal/config"
	"github.com/vedantghorpade1/Sarvam/internal/httpserver"
	"github.com/vedantghorpade1/Sarvam/internal/llm"
	appmw "github.com/vedantghorpade1/Sarvam/internal/middleware"
	"github.com/vedantghorpade1/Sarvam/internal/tts"
	"github.com/vedantghorpade1/Sarvam/internal/turn"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	store := agent.NewStore(mongoClient.Database(cfg.MongoDatabase))

	synth := newSynthesizer(cfg)
	replies := llm.NewSarvamClient(cfg.SarvamAPIKey, cfg.SarvamLLMModel)

	twilioClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	initiator := call.NewInitiator(store, twilioClient.Api, cfg.TwilioPhoneNumber, cfg.PublicBaseURL)

	e := httpserver.New()
	e.Use(appmw.TwilioAuth(func() string { return cfg.TwilioAuthToken }, cfg.PublicBaseURL))

	handlers := apihttp.NewHandlers(store, synth, turn.NewHandler(replies, cfg.PublicBaseURL), initiator, cfg.JWTSecret)
	handlers.Register(e)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

// newSynthesizer picks the vendor implementation from configuration. Response
// shape normalization lives inside each client, never inferred at runtime.
func newSynthesizer(cfg config.Config) tts.Synthesizer {
	switch cfg.TTSProvider {
	case "elevenlabs":
		return tts.NewElevenLabsClient(cfg.ElevenLabsKey)
	default:
		return tts.NewSarvamClient(cfg.SarvamAPIKey, cfg.SarvamTTSModel)
	}
}
