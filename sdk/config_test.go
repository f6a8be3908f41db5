package sdk

import (
	"errors"
	"testing"
	"time"
)

func TestClientConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ClientConfig
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			config:  ClientConfig{BaseURLs: []string{"http://localhost:8080"}},
			wantErr: false,
		},
		{
			name: "multiple base URLs",
			config: ClientConfig{
				BaseURLs: []string{"https://auth1.example.com", "https://auth2.example.com"},
			},
			wantErr: false,
		},
		{
			name:    "no base URLs",
			config:  ClientConfig{},
			wantErr: true,
		},
		{
			name:    "empty base URL",
			config:  ClientConfig{BaseURLs: []string{"  "}},
			wantErr: true,
		},
		{
			name:    "missing scheme",
			config:  ClientConfig{BaseURLs: []string{"localhost:8080"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestClientConfigValidate_SetsDefaults(t *testing.T) {
	config := ClientConfig{BaseURLs: []string{"http://localhost:8080/"}}

	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if config.BaseURLs[0] != "http://localhost:8080" {
		t.Errorf("base URL = %q, want trailing slash stripped", config.BaseURLs[0])
	}
	if config.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", config.RetryAttempts)
	}
	if config.RetryWaitMin != 1*time.Second {
		t.Errorf("RetryWaitMin = %s, want 1s", config.RetryWaitMin)
	}
	if config.RetryWaitMax != 30*time.Second {
		t.Errorf("RetryWaitMax = %s, want 30s", config.RetryWaitMax)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", config.Timeout)
	}
	if config.HTTPClient == nil {
		t.Error("expected default HTTP client to be created")
	}
}

func TestClientConfigHasAdminAuth(t *testing.T) {
	config := ClientConfig{BaseURLs: []string{"http://localhost:8080"}}
	if config.HasAdminAuth() {
		t.Error("HasAdminAuth() = true without admin key")
	}

	config.AdminKey = "secret-admin-key"
	if !config.HasAdminAuth() {
		t.Error("HasAdminAuth() = false with admin key set")
	}
}
