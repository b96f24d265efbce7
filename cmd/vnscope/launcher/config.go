// This file maps config file, preset and CLI context to the Config struct.

package launcher

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/rony4d/vnscope/integration"
	"github.com/rony4d/vnscope/network"
	"github.com/rony4d/vnscope/utils/logging"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Preset  string        `yaml:"preset"`
	Node    NodeConfig    `yaml:"node"`
	Network NetworkConfig `yaml:"network"`
	Sync    SyncConfig    `yaml:"sync"`
	TxView  TxViewConfig  `yaml:"txview"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type NodeConfig struct {
	RPCURL     string        `yaml:"rpc_url"`
	RPCTimeout time.Duration `yaml:"rpc_timeout"`
}

type NetworkConfig struct {
	Name            string `yaml:"name"`
	EpochMultiplier uint64 `yaml:"epoch_multiplier"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type TxViewConfig struct {
	FanOut int    `yaml:"fanout"`
	Strict bool   `yaml:"strict"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Port    int    `yaml:"port"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SentryDSN string `yaml:"sentry_dsn"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Preset: "default",
		Node: NodeConfig{
			RPCURL:     d.Node.RPCURL,
			RPCTimeout: d.Node.RPCTimeout,
		},
		Network: NetworkConfig{
			Name:            d.Network.Name,
			EpochMultiplier: d.Network.EpochMultiplier,
		},
		Sync: SyncConfig{
			Interval: d.Sync.Interval,
		},
		TxView: TxViewConfig{
			FanOut: d.TxView.FanOut,
			Strict: d.TxView.Strict,
			Format: d.TxView.Format,
		},
		Metrics: MetricsConfig{
			Enabled: d.Metrics.Enable,
			Addr:    d.Metrics.HTTPAddr,
			Port:    d.Metrics.HTTPPort,
		},
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
			SentryDSN: d.Logging.SentryDSN,
		},
	}
}

// MakeAllConfigs merges, in order: defaults, the selected preset, the optional
// config file and CLI overrides. The preset is taken from --preset, else from
// the config file.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	var file []byte
	if path := ctx.GlobalString("config"); path != "" {
		data, err := os.ReadFile(resolvePath(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file = data
	}

	presetName, err := selectPreset(ctx, file)
	if err != nil {
		return cfg, err
	}
	preset, err := integration.GetPresetByName(presetName)
	if err != nil {
		return cfg, err
	}
	applyPreset(&cfg, preset)

	if file != nil {
		if err := decodeConfig(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", ctx.GlobalString("config"), err)
		}
		cfg.Preset = preset.Name
	}

	applyCLIOverrides(ctx, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config-file / preset / CLI wiring
// -----------------------------------------------------------------------------

func selectPreset(ctx *cli.Context, file []byte) (string, error) {
	if ctx.GlobalIsSet("preset") {
		return ctx.GlobalString("preset"), nil
	}
	if file != nil {
		var head struct {
			Preset string `yaml:"preset"`
		}
		if err := yaml.Unmarshal(file, &head); err != nil {
			return "", fmt.Errorf("failed to parse config file: %w", err)
		}
		if head.Preset != "" {
			return head.Preset, nil
		}
	}
	return ctx.GlobalString("preset"), nil
}

// decodeConfig overlays the YAML document onto cfg; absent keys keep their
// current values. Unknown keys are rejected.
func decodeConfig(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyPreset(cfg *Config, preset integration.PresetConfig) {
	current := integration.PresetConfig{
		Name:            cfg.Preset,
		SyncInterval:    cfg.Sync.Interval,
		RPCTimeout:      cfg.Node.RPCTimeout,
		FanOut:          cfg.TxView.FanOut,
		StrictSubstates: cfg.TxView.Strict,
		EnableMetrics:   cfg.Metrics.Enabled,
	}
	integration.ApplyPreset(&current, preset)

	cfg.Preset = current.Name
	cfg.Sync.Interval = current.SyncInterval
	cfg.Node.RPCTimeout = current.RPCTimeout
	cfg.TxView.FanOut = current.FanOut
	cfg.TxView.Strict = current.StrictSubstates
	cfg.Metrics.Enabled = current.EnableMetrics
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet("rpc.url") {
		cfg.Node.RPCURL = ctx.GlobalString("rpc.url")
	}
	if ctx.GlobalIsSet("rpc.timeout") {
		cfg.Node.RPCTimeout = ctx.GlobalDuration("rpc.timeout")
	}

	if ctx.GlobalIsSet("network") {
		cfg.Network.Name = ctx.GlobalString("network")
	}
	if ctx.GlobalIsSet("epoch.multiplier") {
		cfg.Network.EpochMultiplier = ctx.GlobalUint64("epoch.multiplier")
	}

	if ctx.GlobalIsSet("sync.interval") {
		cfg.Sync.Interval = ctx.GlobalDuration("sync.interval")
	}

	if ctx.GlobalIsSet("txview.fanout") {
		cfg.TxView.FanOut = ctx.GlobalInt("txview.fanout")
	}
	if ctx.GlobalIsSet("txview.strict") {
		cfg.TxView.Strict = ctx.GlobalBool("txview.strict")
	}
	if ctx.GlobalIsSet("format") {
		cfg.TxView.Format = ctx.GlobalString("format")
	}

	if ctx.GlobalIsSet("metrics") {
		cfg.Metrics.Enabled = ctx.GlobalBool("metrics")
	}
	if ctx.GlobalIsSet("metrics.addr") {
		cfg.Metrics.Addr = ctx.GlobalString("metrics.addr")
	}
	if ctx.GlobalIsSet("metrics.port") {
		cfg.Metrics.Port = ctx.GlobalInt("metrics.port")
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.GlobalString("sentry.dsn")
	}
}

// Validate rejects configurations the commands cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Node.RPCURL) == "" {
		return fmt.Errorf("rpc url is empty")
	}
	if c.Node.RPCTimeout <= 0 {
		return fmt.Errorf("rpc timeout must be positive, got %v", c.Node.RPCTimeout)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %v", c.Sync.Interval)
	}
	if c.TxView.FanOut <= 0 {
		return fmt.Errorf("txview fanout must be positive, got %d", c.TxView.FanOut)
	}
	switch c.TxView.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q (text|json)", c.TxView.Format)
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules returns the network rules with the configured overrides applied.
func (c Config) Rules() (network.Rules, error) {
	rules, err := network.RulesByName(c.Network.Name)
	if err != nil {
		return rules, err
	}
	if c.Network.EpochMultiplier != 0 {
		rules.Epochs.HeightMultiplier = c.Network.EpochMultiplier
	}
	return rules, rules.Validate()
}

func (c Config) loggingConfig() logging.Config {
	return logging.Config{
		Verbosity: c.Logging.Verbosity,
		Format:    c.Logging.Format,
		Color:     c.Logging.Color,
		SentryDSN: c.Logging.SentryDSN,
	}
}

// MetricsAddr is the listen address of the metrics server.
func (c Config) MetricsAddr() string {
	return net.JoinHostPort(c.Metrics.Addr, strconv.Itoa(c.Metrics.Port))
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
