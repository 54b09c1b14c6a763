package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML config file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Default returns the built-in configuration, used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					cfg, err := l.load()
					if err != nil {
						// Keep serving the old config.
						continue
					}
					l.swap(cfg)
				}
			case <-w.Errors:
				// Ignore watcher errors.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.swap(cfg)
	return cfg, nil
}

func (l *Loader) swap(cfg *Config) {
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Config), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
}

func (l *Loader) load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	t := &cfg.Thresholds
	if t.ScannerAvoidanceWindowS == 0 {
		t.ScannerAvoidanceWindowS = 5
	}
	if t.SuccessWindowS == 0 {
		t.SuccessWindowS = 10
	}
	if t.BarcodeSwitchWindowS == 0 {
		t.BarcodeSwitchWindowS = 5
	}
	if t.WeightTolerancePct == 0 {
		t.WeightTolerancePct = 10.0
	}
	if t.QueueCountThreshold == 0 {
		t.QueueCountThreshold = 5
	}
	if t.WaitTimeThresholdS == 0 {
		t.WaitTimeThresholdS = 300.0
	}
	if t.CrashGapThresholdS == 0 {
		t.CrashGapThresholdS = 120
	}
	if t.InventoryAbsThreshold == 0 {
		t.InventoryAbsThreshold = 5
	}
	if cfg.Engine.RuleWorkers == 0 {
		cfg.Engine.RuleWorkers = 4
	}
	if cfg.Feed.Addr == "" {
		cfg.Feed.Addr = "127.0.0.1:8765"
	}
	if cfg.Feed.DialTimeoutS == 0 {
		cfg.Feed.DialTimeoutS = 10
	}
	if cfg.Sinks.JSONL.Path == "" {
		cfg.Sinks.JSONL.Path = "events.jsonl"
	}
	if cfg.Sinks.RabbitMQ.Exchange == "" {
		cfg.Sinks.RabbitMQ.Exchange = "storewatch.incidents"
	}
}
