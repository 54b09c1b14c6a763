package config

// Config is the top-level YAML structure.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Engine     EngineConf `yaml:"engine"`
	Feed       FeedConf   `yaml:"feed"`
	Sinks      SinksConf  `yaml:"sinks"`
	Admin      AdminConf  `yaml:"admin"`
}

// Thresholds holds every named detection tunable. Window comparisons are
// inclusive of the boundary; "greater than" thresholds are strict.
type Thresholds struct {
	ScannerAvoidanceWindowS int     `yaml:"scanner_avoidance_window_s"`
	SuccessWindowS          int     `yaml:"success_window_s"`
	BarcodeSwitchWindowS    int     `yaml:"barcode_switch_window_s"`
	WeightTolerancePct      float64 `yaml:"weight_tolerance_pct"`
	QueueCountThreshold     int     `yaml:"queue_count_threshold"`
	WaitTimeThresholdS      float64 `yaml:"wait_time_threshold_s"`
	CrashGapThresholdS      int     `yaml:"crash_gap_threshold_s"`
	InventoryAbsThreshold   int     `yaml:"inventory_abs_threshold"`
	// InventoryPctThreshold additionally gates inventory incidents on the
	// relative divergence. Zero disables the relative gate.
	InventoryPctThreshold float64 `yaml:"inventory_pct_threshold"`
}

// EngineConf holds batch-mode concurrency settings.
type EngineConf struct {
	RuleWorkers int `yaml:"rule_workers"`
}

// FeedConf describes the live sensor feed connection.
type FeedConf struct {
	Addr         string `yaml:"addr"`
	DialTimeoutS int    `yaml:"dial_timeout_s"`
}

// SinksConf enables incident sinks. Postgres and RabbitMQ are disabled when
// their URL is empty; the JSONL file is the canonical output.
type SinksConf struct {
	JSONL    JSONLSinkConf    `yaml:"jsonl"`
	Postgres PostgresSinkConf `yaml:"postgres"`
	RabbitMQ RabbitMQSinkConf `yaml:"rabbitmq"`
}

type JSONLSinkConf struct {
	Path string `yaml:"path"`
}

type PostgresSinkConf struct {
	URL string `yaml:"url"`
}

type RabbitMQSinkConf struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// AdminConf holds the streaming-mode admin HTTP listener. Empty disables it.
type AdminConf struct {
	Addr string `yaml:"addr"`
}
