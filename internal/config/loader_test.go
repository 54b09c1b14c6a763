package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openretail/storewatch/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storewatch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	th := cfg.Thresholds
	if th.ScannerAvoidanceWindowS != 5 || th.SuccessWindowS != 10 || th.BarcodeSwitchWindowS != 5 {
		t.Errorf("unexpected window defaults: %+v", th)
	}
	if th.WeightTolerancePct != 10.0 || th.QueueCountThreshold != 5 || th.WaitTimeThresholdS != 300.0 {
		t.Errorf("unexpected threshold defaults: %+v", th)
	}
	if th.CrashGapThresholdS != 120 || th.InventoryAbsThreshold != 5 || th.InventoryPctThreshold != 0 {
		t.Errorf("unexpected threshold defaults: %+v", th)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoader_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  queue_count_threshold: 8
  weight_tolerance_pct: 15
sinks:
  jsonl:
    path: /tmp/out.jsonl
`)
	l, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := l.Config()
	if cfg.Thresholds.QueueCountThreshold != 8 || cfg.Thresholds.WeightTolerancePct != 15 {
		t.Errorf("overrides not applied: %+v", cfg.Thresholds)
	}
	// Everything else keeps its default.
	if cfg.Thresholds.CrashGapThresholdS != 120 {
		t.Errorf("default lost: crash_gap_threshold_s = %d", cfg.Thresholds.CrashGapThresholdS)
	}
	if cfg.Sinks.JSONL.Path != "/tmp/out.jsonl" {
		t.Errorf("sink path = %q", cfg.Sinks.JSONL.Path)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	if _, err := config.NewLoader(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoader_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "thresholds: [not a map")
	if _, err := config.NewLoader(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReload_NotifiesSubscribers(t *testing.T) {
	path := writeConfig(t, "thresholds:\n  queue_count_threshold: 5\n")
	l, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var seen *config.Config
	l.OnChange(func(cfg *config.Config) { seen = cfg })

	if err := os.WriteFile(path, []byte("thresholds:\n  queue_count_threshold: 9\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if _, err := l.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if seen == nil || seen.Thresholds.QueueCountThreshold != 9 {
		t.Errorf("subscriber did not observe reload: %+v", seen)
	}
	if l.Config().Thresholds.QueueCountThreshold != 9 {
		t.Errorf("current config not swapped")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds.WeightTolerancePct = 150
	cfg.Thresholds.CrashGapThresholdS = -1
	cfg.Sinks.RabbitMQ.URL = "amqp://localhost"
	cfg.Sinks.RabbitMQ.Exchange = ""

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"weight_tolerance_pct", "crash_gap_threshold_s", "exchange is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}
