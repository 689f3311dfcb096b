package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   zapcore.Level
	}{
		{name: "json info", level: "info", format: "json", want: zapcore.InfoLevel},
		{name: "text debug", level: "debug", format: "text", want: zapcore.DebugLevel},
		{name: "unknown level falls back to info", level: "loud", format: "", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := Logger
			defer func() { Logger = old }()

			if err := InitLogger(tt.level, tt.format); err != nil {
				t.Fatalf("InitLogger: %v", err)
			}
			if !Logger.Core().Enabled(tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && Logger.Core().Enabled(tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
		})
	}
}

func TestGetLogger_Fallback(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	Logger = nil
	if GetLogger() == nil {
		t.Fatal("expected fallback logger")
	}
	if WithComponent("test") == nil {
		t.Fatal("expected component logger")
	}
}
