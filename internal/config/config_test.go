package config

import (
	"strings"
	"testing"
	"time"
)

// setBaseline sets the minimum environment for Load to pass validation
// with the memory backend and a dry-run notifier.
func setBaseline(t *testing.T) {
	t.Helper()
	t.Setenv("WS_ENDPOINT", "ws://localhost:9000/stream")
	t.Setenv("DRY_RUN", "true")
}

func TestLoadDefaults(t *testing.T) {
	setBaseline(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if cfg.IngestSource != SourceWebSocket {
		t.Errorf("IngestSource = %q, want websocket", cfg.IngestSource)
	}
	if cfg.Window != 5*time.Minute {
		t.Errorf("Window = %v, want 5m", cfg.Window)
	}
	if cfg.MinMentions != 3 {
		t.Errorf("MinMentions = %d, want 3", cfg.MinMentions)
	}
	if cfg.MinUniqueSources != 2 {
		t.Errorf("MinUniqueSources = %d, want 2", cfg.MinUniqueSources)
	}
	if cfg.DetectionInterval != 30*time.Second {
		t.Errorf("DetectionInterval = %v, want 30s", cfg.DetectionInterval)
	}
	if cfg.CheckLiquidity {
		t.Error("CheckLiquidity should default to false")
	}
	if cfg.MinLiquidityUSD != 1000 {
		t.Errorf("MinLiquidityUSD = %v, want 1000", cfg.MinLiquidityUSD)
	}
	if cfg.CooldownWindow != 15*time.Minute {
		t.Errorf("CooldownWindow = %v, want 15m", cfg.CooldownWindow)
	}
	if cfg.RetentionHorizon != 24*time.Hour {
		t.Errorf("RetentionHorizon = %v, want 24h", cfg.RetentionHorizon)
	}
	if cfg.RetentionSchedule != "0 * * * *" {
		t.Errorf("RetentionSchedule = %q, want hourly", cfg.RetentionSchedule)
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseline(t)
	t.Setenv("TRENDING_WINDOW", "10m")
	t.Setenv("MIN_MENTIONS", "5")
	t.Setenv("CHECK_LIQUIDITY", "true")
	t.Setenv("MIN_LIQUIDITY_USD", "2500.5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Window != 10*time.Minute {
		t.Errorf("Window = %v, want 10m", cfg.Window)
	}
	if cfg.MinMentions != 5 {
		t.Errorf("MinMentions = %d, want 5", cfg.MinMentions)
	}
	if !cfg.CheckLiquidity {
		t.Error("CheckLiquidity should be true")
	}
	if cfg.MinLiquidityUSD != 2500.5 {
		t.Errorf("MinLiquidityUSD = %v, want 2500.5", cfg.MinLiquidityUSD)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("KafkaBrokers = %v, want trimmed pair", cfg.KafkaBrokers)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	setBaseline(t)
	t.Setenv("MIN_MENTIONS", "lots")
	t.Setenv("TRENDING_WINDOW", "soon")
	t.Setenv("CHECK_LIQUIDITY", "definitely")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MinMentions != 3 {
		t.Errorf("MinMentions = %d, want default 3", cfg.MinMentions)
	}
	if cfg.Window != 5*time.Minute {
		t.Errorf("Window = %v, want default 5m", cfg.Window)
	}
	if cfg.CheckLiquidity {
		t.Error("CheckLiquidity should fall back to false")
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "redis"},
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"STORAGE_BACKEND": "postgres"},
			wantErr: "POSTGRES_DSN",
		},
		{
			name:    "clickhouse without dsn",
			env:     map[string]string{"STORAGE_BACKEND": "clickhouse"},
			wantErr: "CLICKHOUSE_DSN",
		},
		{
			name:    "websocket without endpoint",
			env:     map[string]string{"WS_ENDPOINT": ""},
			wantErr: "WS_ENDPOINT",
		},
		{
			name:    "kafka without brokers",
			env:     map[string]string{"INGEST_SOURCE": "kafka"},
			wantErr: "KAFKA_BROKERS",
		},
		{
			name:    "unknown source",
			env:     map[string]string{"INGEST_SOURCE": "carrier-pigeon"},
			wantErr: "INGEST_SOURCE",
		},
		{
			name:    "live mode without credentials",
			env:     map[string]string{"DRY_RUN": "false"},
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		{
			name:    "zero window",
			env:     map[string]string{"TRENDING_WINDOW": "0s"},
			wantErr: "TRENDING_WINDOW",
		},
		{
			name:    "zero min mentions",
			env:     map[string]string{"MIN_MENTIONS": "0"},
			wantErr: "MIN_MENTIONS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseline(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}
