// Package integration provides named configuration presets for the inspector.
// Presets bundle the knobs that trade load on the node against freshness and
// completeness (poll interval, query timeout, substate fan-out, strict
// aggregation, metrics) into profiles operators can pick with --preset.
//
// Usage:
//
//	cfg := integration.LitePreset()  // for a node on a laptop
//	cfg := integration.FullPreset()  // for a monitored production node
//	cfg := integration.AuditPreset() // when partial timelines are unacceptable
package integration

import (
	"fmt"
	"time"
)

// PresetConfig captures the tunable parameters that vary across preset
// profiles. Endpoint and logging settings are never part of a preset.
type PresetConfig struct {
	Name            string        // identifier used by --preset
	SyncInterval    time.Duration // epoch poll period
	RPCTimeout      time.Duration // bound on every single node query
	FanOut          int           // concurrent substate fetches per transaction view
	StrictSubstates bool          // fail a whole view when one shard's substates fail
	EnableMetrics   bool          // expose the Prometheus endpoint
}

// DefaultPreset returns the baseline profile.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:            "default",
		SyncInterval:    2 * time.Minute,  // epochs change slowly; a few polls per epoch are enough
		RPCTimeout:      30 * time.Second, // generous enough for busy nodes
		FanOut:          8,
		StrictSubstates: false, // show what could be fetched, flag the rest
		EnableMetrics:   false,
	}
}

// LitePreset returns a profile that keeps load on the node low: slower polls,
// short timeouts and little parallelism.
//
// Use cases:
//   - Inspecting a development node on a laptop
//   - Shared nodes where the inspector must stay in the background
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.SyncInterval = 5 * time.Minute
	cfg.RPCTimeout = 10 * time.Second
	cfg.FanOut = 2
	return cfg
}

// FullPreset returns a profile for monitored production nodes: faster polls,
// wider fan-out and metrics enabled.
//
// Trade-offs:
//   - More queries against the node
//   - Wide fan-out can spike load when a transaction touches many shards
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.SyncInterval = time.Minute
	cfg.FanOut = 16
	cfg.EnableMetrics = true
	return cfg
}

// AuditPreset returns a profile that never reports partial transaction views.
// Any shard whose substates cannot be fetched fails the whole view.
func AuditPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "audit"
	cfg.RPCTimeout = time.Minute
	cfg.FanOut = 4
	cfg.StrictSubstates = true
	cfg.EnableMetrics = true
	return cfg
}

// PresetNames lists the valid preset names.
func PresetNames() []string {
	return []string{"default", "lite", "full", "audit"}
}

// GetPresetByName looks up a preset by its string identifier.
//
// Example:
//
//	preset, err := integration.GetPresetByName("lite")
//	if err != nil {
//	    return err
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "audit":
		return AuditPreset(), nil
	case "default", "":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: %v)", name, PresetNames())
	}
}

// ApplyPreset merges preset into target. Zero durations and fan-out leave the
// target untouched; booleans are always applied.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.SyncInterval > 0 {
		target.SyncInterval = preset.SyncInterval
	}
	if preset.RPCTimeout > 0 {
		target.RPCTimeout = preset.RPCTimeout
	}
	if preset.FanOut > 0 {
		target.FanOut = preset.FanOut
	}
	target.StrictSubstates = preset.StrictSubstates
	target.EnableMetrics = preset.EnableMetrics
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
