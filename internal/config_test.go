package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestFeedConfig_TimeoutDefault(t *testing.T) {
	cfg := FeedConfig{SearchURL: "http://localhost:8050/search"}
	if got := cfg.Timeout(); got.Seconds() != 15 {
		t.Errorf("default timeout = %v", got)
	}
	cfg.TimeoutSeconds = 30
	if got := cfg.Timeout(); got.Seconds() != 30 {
		t.Errorf("timeout = %v", got)
	}
}

func TestLLMConfig_Validation(t *testing.T) {
	cfg := LLMConfig{Endpoint: "https://api.example.com/v1/chat/completions"}
	if err := cfg.Validate(); err == nil {
		t.Error("missing model should fail")
	}
	cfg.Model = "gpt-4o-mini"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid llm config failed: %v", err)
	}
	if cfg.Timeout().Minutes() != 3 {
		t.Errorf("default llm timeout = %v", cfg.Timeout())
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
