package agent

import "testing"

func TestVoices_CatalogIsCopied(t *testing.T) {
	voices := Voices()
	if len(voices) != 7 {
		t.Fatalf("expected 7 voices, got %d", len(voices))
	}
	voices[0].ID = "mutated"
	if Voices()[0].ID != "anushka" {
		t.Fatalf("catalog must not be mutable through the returned slice")
	}
}

func TestKnownVoice(t *testing.T) {
	if !KnownVoice("karun") {
		t.Fatalf("expected karun in catalog")
	}
	if KnownVoice("rachel") {
		t.Fatalf("rachel is not a sarvam speaker")
	}
}
