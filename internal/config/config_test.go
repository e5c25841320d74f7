package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "5175" || cfg.Reactions != ReactionsLog || !cfg.SpeechEnabled || cfg.ServerClock {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Production() {
		t.Fatalf("default env should not be production")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REACTIONS", "desktop")
	t.Setenv("GAME_SERVER_CLOCK", "true")
	t.Setenv("APP_ENV", "production")
	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.Reactions != ReactionsDesktop || !cfg.ServerClock || !cfg.Production() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseRejectsUnknownReactions(t *testing.T) {
	t.Setenv("REACTIONS", "haptics")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseRejectsBadBool(t *testing.T) {
	t.Setenv("SPEECH_ENABLED", "maybe")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error")
	}
}
