package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestSystemSettingServiceDefaults(t *testing.T) {
	svc := NewSystemSettingService(setupServiceTestDB(t), SystemSettings{GeminiAPIKey: " env-key "})

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}

	expected := SystemSettings{
		AIProvider:   AIProviderLocal,
		LocalBaseURL: DefaultLocalBaseURL,
		LocalModel:   DefaultLocalModel,
		GeminiAPIKey: "env-key",
		GeminiModel:  DefaultGeminiModel,
	}
	if settings != expected {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
}

func TestSystemSettingServiceWithoutDatabase(t *testing.T) {
	svc := NewSystemSettingService(nil, SystemSettings{AIProvider: "GEMINI", GeminiModel: "gemini-2.0-flash"})

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if settings.AIProvider != AIProviderGemini || settings.GeminiModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected settings: %#v", settings)
	}

	if _, err := svc.UpdateSettings(SystemSettingsInput{}); !errors.Is(err, ErrSettingsUnavailable) {
		t.Fatalf("expected ErrSettingsUnavailable, got %v", err)
	}
}

func TestSystemSettingServiceUpdateAndRetrieve(t *testing.T) {
	svc := NewSystemSettingService(setupServiceTestDB(t), SystemSettings{})

	updated, err := svc.UpdateSettings(SystemSettingsInput{
		AIProvider:   " Gemini ",
		LocalBaseURL: " http://192.168.1.20:1234/v1/ ",
		LocalModel:   "llama-3.1-8b",
		GeminiAPIKey: " gm-12345678 ",
		GeminiModel:  "",
	})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	expected := SystemSettings{
		AIProvider:   AIProviderGemini,
		LocalBaseURL: "http://192.168.1.20:1234/v1",
		LocalModel:   "llama-3.1-8b",
		GeminiAPIKey: "gm-12345678",
		GeminiModel:  DefaultGeminiModel,
	}
	if updated != expected {
		t.Fatalf("unexpected updated settings: %#v", updated)
	}

	loaded, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if loaded != expected {
		t.Fatalf("unexpected stored settings: %#v", loaded)
	}

	// 回传掩码值时保留原密钥
	again, err := svc.UpdateSettings(SystemSettingsInput{
		AIProvider:   AIProviderLocal,
		GeminiAPIKey: MaskSecret("gm-12345678"),
	})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if again.GeminiAPIKey != "gm-12345678" {
		t.Fatalf("expected masked key to keep the stored secret, got %q", again.GeminiAPIKey)
	}
	if again.AIProvider != AIProviderLocal || again.LocalBaseURL != DefaultLocalBaseURL {
		t.Fatalf("unexpected settings after second update: %#v", again)
	}
}

func TestSystemSettingServiceRejectsUnknownProvider(t *testing.T) {
	svc := NewSystemSettingService(setupServiceTestDB(t), SystemSettings{})

	if _, err := svc.UpdateSettings(SystemSettingsInput{AIProvider: "openai"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestSystemSettingServiceTestLocalConnection(t *testing.T) {
	svc := NewSystemSettingService(nil, SystemSettings{})
	svc.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if r.URL.String() != "http://lm.test/v1/models" {
			t.Fatalf("unexpected url %s", r.URL)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer lm-key" {
			t.Fatalf("unexpected authorization header %s", got)
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{"data":[]}`)), Header: make(http.Header)}, nil
	}})

	err := svc.TestAIConnection(context.Background(), SystemSettings{
		AIProvider:   AIProviderLocal,
		LocalBaseURL: "http://lm.test/v1",
		LocalAPIKey:  "lm-key",
	})
	if err != nil {
		t.Fatalf("expected connection test to pass: %v", err)
	}
}

func TestSystemSettingServiceTestLocalConnectionFailure(t *testing.T) {
	svc := NewSystemSettingService(nil, SystemSettings{})
	svc.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Status:     "401 Unauthorized",
			Body:       io.NopCloser(strings.NewReader("bad key")),
			Header:     make(http.Header),
		}, nil
	}})

	err := svc.TestAIConnection(context.Background(), SystemSettings{AIProvider: AIProviderLocal})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected failure with body, got %v", err)
	}
}

func TestSystemSettingServiceTestGeminiConnection(t *testing.T) {
	svc := NewSystemSettingService(nil, SystemSettings{})
	gemini := &fakeGemini{}
	svc.gemini = gemini

	if err := svc.TestAIConnection(context.Background(), SystemSettings{AIProvider: AIProviderGemini}); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}
	if gemini.pinged {
		t.Fatalf("gemini should not be pinged without a key")
	}

	if err := svc.TestAIConnection(context.Background(), SystemSettings{AIProvider: AIProviderGemini, GeminiAPIKey: "gm-key"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gemini.pinged || gemini.apiKey != "gm-key" || gemini.model != DefaultGeminiModel {
		t.Fatalf("unexpected ping: %+v", gemini)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":            "",
		"abc":         "***",
		"gm-12345678": "*******5678",
	}
	for input, want := range cases {
		if got := MaskSecret(input); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", input, got, want)
		}
	}
}
