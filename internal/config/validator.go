package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for nonsensical threshold values. Zero values
// never reach here (defaults are applied on load), so every check is against
// explicitly configured nonsense.
func Validate(cfg *Config) error {
	var errs []string

	t := cfg.Thresholds
	if t.ScannerAvoidanceWindowS < 0 {
		errs = append(errs, "thresholds: scanner_avoidance_window_s must not be negative")
	}
	if t.SuccessWindowS < 0 {
		errs = append(errs, "thresholds: success_window_s must not be negative")
	}
	if t.BarcodeSwitchWindowS < 0 {
		errs = append(errs, "thresholds: barcode_switch_window_s must not be negative")
	}
	if t.WeightTolerancePct < 0 || t.WeightTolerancePct > 100 {
		errs = append(errs, "thresholds: weight_tolerance_pct must be within [0,100]")
	}
	if t.QueueCountThreshold < 0 {
		errs = append(errs, "thresholds: queue_count_threshold must not be negative")
	}
	if t.WaitTimeThresholdS < 0 {
		errs = append(errs, "thresholds: wait_time_threshold_s must not be negative")
	}
	if t.CrashGapThresholdS <= 0 {
		errs = append(errs, "thresholds: crash_gap_threshold_s must be positive")
	}
	if t.InventoryAbsThreshold < 0 {
		errs = append(errs, "thresholds: inventory_abs_threshold must not be negative")
	}
	if t.InventoryPctThreshold < 0 || t.InventoryPctThreshold > 100 {
		errs = append(errs, "thresholds: inventory_pct_threshold must be within [0,100]")
	}
	if cfg.Engine.RuleWorkers < 1 {
		errs = append(errs, "engine: rule_workers must be at least 1")
	}
	if cfg.Sinks.RabbitMQ.URL != "" && cfg.Sinks.RabbitMQ.Exchange == "" {
		errs = append(errs, "sinks.rabbitmq: exchange is required when url is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
