// Package config loads engine tuning parameters: tick-stage rates,
// conjunction/comms thresholds, and bridge timeouts. Grounded on the
// teacher's cmd/drone-swarm/config/loader.go defaults-then-file-then-
// environment sequence, generalized from hand-rolled os.Getenv parsing
// to spf13/viper's native env binding, with gopkg.in/yaml.v3 used
// directly for SaveDefault so the on-disk format stays plain YAML a
// user can hand-edit.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SchedulerConfig carries the per-stage rates named in spec.md §4.1.
type SchedulerConfig struct {
	SensorRateHz        float64 `mapstructure:"sensor_rate_hz" yaml:"sensor_rate_hz"`
	DatalinkRateHz      float64 `mapstructure:"datalink_rate_hz" yaml:"datalink_rate_hz"`
	CommsLinkRateHz     float64 `mapstructure:"comms_link_rate_hz" yaml:"comms_link_rate_hz"`
	CommsRoutingRateHz  float64 `mapstructure:"comms_routing_rate_hz" yaml:"comms_routing_rate_hz"`
	ConjunctionRateHz   float64 `mapstructure:"conjunction_rate_hz" yaml:"conjunction_rate_hz"`
	AutoTrackIntervalS  float64 `mapstructure:"auto_track_interval_s" yaml:"auto_track_interval_s"`
}

// CommsConfig resolves the Open Question in spec.md §9: report raw or
// clamped utilization. Default is raw (false), per SPEC_FULL.md §9.
// ClampUtilization is loaded but no package reads it, so utilization
// is never clamped.
type CommsConfig struct {
	ClampUtilization bool `mapstructure:"clamp_utilization" yaml:"clamp_utilization"`
}

// ConjunctionConfig carries the severity thresholds of spec.md §3/§4.5.
type ConjunctionConfig struct {
	WatchThresholdM    float64 `mapstructure:"watch_threshold_m" yaml:"watch_threshold_m"`
	CautionThresholdM  float64 `mapstructure:"caution_threshold_m" yaml:"caution_threshold_m"`
	CriticalThresholdM float64 `mapstructure:"critical_threshold_m" yaml:"critical_threshold_m"`
}

// BridgeConfig carries the per-mode timeouts of spec.md §5.
type BridgeConfig struct {
	BatchTimeoutS  float64 `mapstructure:"batch_timeout_s" yaml:"batch_timeout_s"`
	ReplayTimeoutS float64 `mapstructure:"replay_timeout_s" yaml:"replay_timeout_s"`
	DOETimeoutS    float64 `mapstructure:"doe_timeout_s" yaml:"doe_timeout_s"`
	ListenAddr     string  `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// LoggingConfig controls pkg/logger's global level/color behavior.
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// Config is the full engine configuration tree.
type Config struct {
	Scheduler   SchedulerConfig   `mapstructure:"scheduler" yaml:"scheduler"`
	Comms       CommsConfig       `mapstructure:"comms" yaml:"comms"`
	Conjunction ConjunctionConfig `mapstructure:"conjunction" yaml:"conjunction"`
	Bridge      BridgeConfig      `mapstructure:"bridge" yaml:"bridge"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// Default returns the spec-mandated rates and thresholds.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			SensorRateHz:       0, // every tick
			DatalinkRateHz:     1,
			CommsLinkRateHz:    4,
			CommsRoutingRateHz: 2,
			ConjunctionRateHz:  2,
			AutoTrackIntervalS: 2,
		},
		Comms: CommsConfig{ClampUtilization: false},
		Conjunction: ConjunctionConfig{
			WatchThresholdM:    50000,
			CautionThresholdM:  10000,
			CriticalThresholdM: 1000,
		},
		Bridge: BridgeConfig{
			BatchTimeoutS:  300,
			ReplayTimeoutS: 60,
			DOETimeoutS:    120,
			ListenAddr:     ":8090",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scheduler.sensor_rate_hz", d.Scheduler.SensorRateHz)
	v.SetDefault("scheduler.datalink_rate_hz", d.Scheduler.DatalinkRateHz)
	v.SetDefault("scheduler.comms_link_rate_hz", d.Scheduler.CommsLinkRateHz)
	v.SetDefault("scheduler.comms_routing_rate_hz", d.Scheduler.CommsRoutingRateHz)
	v.SetDefault("scheduler.conjunction_rate_hz", d.Scheduler.ConjunctionRateHz)
	v.SetDefault("scheduler.auto_track_interval_s", d.Scheduler.AutoTrackIntervalS)
	v.SetDefault("comms.clamp_utilization", d.Comms.ClampUtilization)
	v.SetDefault("conjunction.watch_threshold_m", d.Conjunction.WatchThresholdM)
	v.SetDefault("conjunction.caution_threshold_m", d.Conjunction.CautionThresholdM)
	v.SetDefault("conjunction.critical_threshold_m", d.Conjunction.CriticalThresholdM)
	v.SetDefault("bridge.batch_timeout_s", d.Bridge.BatchTimeoutS)
	v.SetDefault("bridge.replay_timeout_s", d.Bridge.ReplayTimeoutS)
	v.SetDefault("bridge.doe_timeout_s", d.Bridge.DOETimeoutS)
	v.SetDefault("bridge.listen_addr", d.Bridge.ListenAddr)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.no_color", d.Logging.NoColor)
}

// Load reads configuration from path (YAML) layered over the spec
// defaults, then applies SIMCTL_-prefixed environment overrides, per
// SPEC_FULL.md §2's defaults->file->env loading order. path == ""
// skips the file layer and returns defaults plus env overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	d := Default()
	setDefaults(v, d)

	v.SetEnvPrefix("SIMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config: file not found: %s", path)
			}
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	return &cfg, nil
}

// SaveDefault writes the spec-default configuration to path as plain
// YAML, for `simctl` to scaffold a starter config file a user can then
// hand-edit, mirroring the teacher's SaveConfig.
func SaveDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: marshaling defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
