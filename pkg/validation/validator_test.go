package validation

import (
	"errors"
	"strings"
	"testing"
)

type sampleConfig struct {
	Concurrency int     `validate:"gte=1,lte=1024"`
	Tolerance   float64 `validate:"gt=0"`
	Mode        string  `validate:"oneof=stream write"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		config  sampleConfig
		wantErr string
	}{
		{"valid", sampleConfig{Concurrency: 4, Tolerance: 0.1, Mode: "stream"}, ""},
		{"low concurrency", sampleConfig{Concurrency: 0, Tolerance: 0.1, Mode: "stream"}, "must be at least 1"},
		{"high concurrency", sampleConfig{Concurrency: 2000, Tolerance: 0.1, Mode: "stream"}, "must not exceed 1024"},
		{"zero tolerance", sampleConfig{Concurrency: 1, Tolerance: 0, Mode: "stream"}, "must be greater than 0"},
		{"bad mode", sampleConfig{Concurrency: 1, Tolerance: 1, Mode: "mutate"}, "must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidateStruct_Nil(t *testing.T) {
	if err := ValidateStruct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}

func TestValidatePropertyKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"weight", false},
		{"_seed", false},
		{"community2", false},
		{"", true},
		{"2cost", true},
		{"has space", true},
		{strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidatePropertyKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePropertyKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}

	if err := OptionalPropertyKey("")(); err != nil {
		t.Errorf("Empty optional key should be valid, got %v", err)
	}
}
